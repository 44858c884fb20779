package internal

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

var (
	// MessageData payloads of the encoded profile are base64 of base64 of a
	// markup fragment; a MessageData that already holds markup never matches
	messageDataPattern = regexp.MustCompile(`<MessageData>\s*([A-Za-z0-9+/=\r\n]+?)\s*</MessageData>`)

	// text tags carrying a single base64 layer in the encoded profile
	textTagPattern = regexp.MustCompile(
		`<(Name|LobbyId|GamerId|CreatorGamerId|MatchId)>([A-Za-z0-9+/=\r\n]*)</(Name|LobbyId|GamerId|CreatorGamerId|MatchId)>`)

	// any content of the text tags, to tell plain names from base64 ones
	textTagContentPattern = regexp.MustCompile(
		`<(Name|LobbyId|GamerId|CreatorGamerId|MatchId)>([^<]*)</(Name|LobbyId|GamerId|CreatorGamerId|MatchId)>`)

	xmlDeclPattern = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)
)

// Decoded is a replay file with its container transformation reversed
type Decoded struct {
	Document *etree.Document
	Profile  SchemaProfile
	// Text is the plaintext markup the document was parsed from
	Text []byte
}

// DecodeFile reads and decodes the replay file at path. When dump is set the
// decoded plaintext is written next to the replay as '<path>.xml'.
func DecodeFile(path string, dump bool) (*Decoded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	decoded, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	slog.Debug("Decoded replay", slog.String("file", path), slog.String("profile", decoded.Profile.String()),
		slog.String("size", humanize.Bytes(uint64(len(decoded.Text)))))

	if dump {
		dumpPath := path + ".xml"
		if errDump := os.WriteFile(dumpPath, decoded.Text, 0o644); errDump != nil {
			slog.Warn("Failed to write decoded replay", slog.String("file", dumpPath), slog.Any("reason", errDump))
		}
	}

	return decoded, nil
}

// Decode reverses the replay container: base64, then zlib (or raw deflate),
// then the profile dependent tag encoding, and parses the result.
func Decode(raw []byte) (*Decoded, error) {
	compressed, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return nil, errors.Join(ErrCorruptReplay, fmt.Errorf("outer base64: %w", err))
	}

	inflated, err := inflate(compressed)
	if err != nil {
		return nil, errors.Join(ErrCorruptReplay, err)
	}

	text, profile, err := DecodeText(inflated)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if errRead := doc.ReadFromBytes(text); errRead != nil {
		return nil, errors.Join(ErrCorruptReplay, fmt.Errorf("markup: %w", errRead))
	}

	if doc.Root() == nil {
		return nil, errors.Join(ErrCorruptReplay, errors.New("markup has no root element"))
	}

	return &Decoded{Document: doc, Profile: profile, Text: text}, nil
}

func inflate(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		// some writers omit the zlib header and emit a bare deflate stream
		reader = flate.NewReader(bytes.NewReader(compressed))
	}
	defer reader.Close()

	inflated, errRead := io.ReadAll(reader)
	if errRead != nil {
		return nil, fmt.Errorf("decompress: %w", errRead)
	}

	return inflated, nil
}

// DetectProfile probes the decompressed text for base64 MessageData payloads.
// Text without any MessageData is encoded when every non-empty text tag holds
// base64 of UTF-8 text.
func DetectProfile(text []byte) SchemaProfile {
	if messageDataPattern.Match(text) {
		return ProfileEncoded
	}

	if textTagsEncoded(text) {
		return ProfileEncoded
	}

	return ProfileLegacy
}

func textTagsEncoded(text []byte) bool {
	found := false

	for _, groups := range textTagContentPattern.FindAllSubmatch(text, -1) {
		value := groups[2]
		if len(value) == 0 {
			continue
		}

		if !bytes.Equal(groups[1], groups[3]) {
			return false
		}

		plain, err := base64.StdEncoding.DecodeString(string(value))
		if err != nil || !utf8.Valid(plain) {
			return false
		}

		found = true
	}

	return found
}

// DecodeText reverses the tag level encoding of decompressed replay text.
// Legacy text, and text that has already been decoded, is returned unchanged.
func DecodeText(text []byte) ([]byte, SchemaProfile, error) {
	profile := DetectProfile(text)
	if profile == ProfileLegacy {
		return text, profile, nil
	}

	var firstErr error

	setErr := func(err error) {
		if firstErr == nil {
			firstErr = errors.Join(ErrCorruptReplay, err)
		}
	}

	// MessageData first: the spliced fragments may carry text tags of their own
	out := messageDataPattern.ReplaceAllFunc(text, func(match []byte) []byte {
		payload := messageDataPattern.FindSubmatch(match)[1]

		fragment, err := base64Twice(payload)
		if err != nil {
			setErr(fmt.Errorf("MessageData: %w", err))

			return match
		}

		fragment = xmlDeclPattern.ReplaceAll(fragment, nil)

		return concat([]byte("<MessageData>"), fragment, []byte("</MessageData>"))
	})

	out = textTagPattern.ReplaceAllFunc(out, func(match []byte) []byte {
		groups := textTagPattern.FindSubmatch(match)
		if !bytes.Equal(groups[1], groups[3]) {
			return match
		}

		plain, err := base64.StdEncoding.DecodeString(string(groups[2]))
		if err != nil {
			setErr(fmt.Errorf("%s: %w", groups[1], err))

			return match
		}

		var escaped bytes.Buffer
		if errEscape := xml.EscapeText(&escaped, plain); errEscape != nil {
			setErr(errEscape)

			return match
		}

		return concat([]byte("<"), groups[1], []byte(">"), escaped.Bytes(), []byte("</"), groups[1], []byte(">"))
	})

	if firstErr != nil {
		return nil, profile, firstErr
	}

	return out, profile, nil
}

func base64Twice(payload []byte) ([]byte, error) {
	once, err := base64.StdEncoding.DecodeString(string(payload))
	if err != nil {
		return nil, err
	}

	return base64.StdEncoding.DecodeString(string(bytes.TrimSpace(once)))
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
