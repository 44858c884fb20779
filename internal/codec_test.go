package internal

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTrip(t *testing.T) {
	for _, profile := range []SchemaProfile{ProfileLegacy, ProfileEncoded} {
		t.Run(profile.String(), func(t *testing.T) {
			fix := newFixture()
			fix.home.name = "Orcs & Goblins"
			fix.step(sequence(stepResult("BlockStep", StepBlock, homeBlitzer, awayBlocker,
				blockOutcome(homeBlitzer, awayBlocker, BlockPushed))))

			decoded := fix.decoded(t, profile)
			root := decoded.Document.Root()

			name, found := childText(root, "NotificationGameJoined/GameInfos/GamersInfos/GamerInfos/Roster/Name")
			require.True(t, found)
			require.Equal(t, "Orcs & Goblins", name)

			outcome := root.FindElement("ReplayStep/EventExecuteSequence/Sequence/StepResult/Results/StringMessage/MessageData/ResultBlockOutcome/Outcome")
			require.NotNil(t, outcome)
			require.Equal(t, "4", outcome.Text())

			messageName, _ := childText(root, "ReplayStep/EventExecuteSequence/Sequence/StepResult/Results/StringMessage/Name")
			require.Equal(t, "ResultBlockOutcome", messageName)
		})
	}
}

func TestDecodeDeterministic(t *testing.T) {
	raw := encodeReplay(t, newFixture().step(kickoff()).xml(), ProfileEncoded)

	first, err := Decode(raw)
	require.NoError(t, err)

	second, err := Decode(raw)
	require.NoError(t, err)

	require.Equal(t, first.Text, second.Text)
}

func TestDecodeTextIdempotent(t *testing.T) {
	encoded := []byte(encodeText(newFixture().step(activation(homeBlitzer)).xml()))
	require.Equal(t, ProfileEncoded, DetectProfile(encoded))

	once, profile, err := DecodeText(encoded)
	require.NoError(t, err)
	require.Equal(t, ProfileEncoded, profile)

	twice, profile, err := DecodeText(once)
	require.NoError(t, err)
	require.Equal(t, ProfileLegacy, profile)
	require.Equal(t, once, twice)
}

func TestDetectProfileFromTextTags(t *testing.T) {
	encode := func(value string) string { return base64.StdEncoding.EncodeToString([]byte(value)) }

	encoded := "<Replay><ClientVersion>1.2.3</ClientVersion><GamerInfos><Name>" + encode("Sjogren") +
		"</Name><Roster><Name>" + encode("Orcs & Goblins") + "</Name></Roster></GamerInfos>" +
		"<PlayerData><Id>1</Id><Name>" + encode("Ugrak") + "</Name><LobbyId>" + encode("lobby-1") + "</LobbyId></PlayerData></Replay>"

	require.Equal(t, ProfileEncoded, DetectProfile([]byte(encoded)))

	text, profile, err := DecodeText([]byte(encoded))
	require.NoError(t, err)
	require.Equal(t, ProfileEncoded, profile)
	require.Contains(t, string(text), "<Name>Orcs &amp; Goblins</Name>")
	require.Contains(t, string(text), "<LobbyId>lobby-1</LobbyId>")
	require.Equal(t, ProfileLegacy, DetectProfile(text))

	// one plain name is enough to keep a document legacy
	mixed := "<Replay><Name>" + encode("Sjogren") + "</Name><Name>Ugrak</Name></Replay>"
	require.Equal(t, ProfileLegacy, DetectProfile([]byte(mixed)))

	require.Equal(t, ProfileLegacy, DetectProfile([]byte("<Replay><ClientVersion>1.2.3</ClientVersion></Replay>")))
}

func TestDecodeRawDeflate(t *testing.T) {
	var compressed bytes.Buffer

	writer, err := flate.NewWriter(&compressed, flate.DefaultCompression)
	require.NoError(t, err)
	_, err = writer.Write([]byte(newFixture().xml()))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	decoded, err := Decode([]byte(base64.StdEncoding.EncodeToString(compressed.Bytes())))
	require.NoError(t, err)
	require.Equal(t, ProfileLegacy, decoded.Profile)
}

func TestDecodeCorrupt(t *testing.T) {
	cases := map[string][]byte{
		"not base64":   []byte("this is %% not base64"),
		"not zlib":     []byte(base64.StdEncoding.EncodeToString([]byte("plain text, never compressed"))),
		"not markup":   encodeReplay(t, "<Replay><Unterminated", ProfileLegacy),
		"bad tag data": encodeReplay(t, "<Replay><MessageData>QUJD</MessageData></Replay>", ProfileLegacy),
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrCorruptReplay), "got %v", err)
		})
	}
}

func TestDecodeFileDump(t *testing.T) {
	path := newFixture().writeFile(t, t.TempDir(), "dump.bbr", ProfileEncoded)

	decoded, err := DecodeFile(path, true)
	require.NoError(t, err)

	dumped, err := os.ReadFile(path + ".xml")
	require.NoError(t, err)
	require.Equal(t, decoded.Text, dumped)

	_, err = DecodeFile(filepath.Join(t.TempDir(), "absent.bbr"), false)
	require.ErrorIs(t, err, os.ErrNotExist)
}
