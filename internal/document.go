package internal

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// childText returns the trimmed text of the element at path below el, and
// whether it exists
func childText(el *etree.Element, path string) (string, bool) {
	if el == nil {
		return "", false
	}

	child := el.FindElement(path)
	if child == nil {
		return "", false
	}

	return strings.TrimSpace(child.Text()), true
}

// optInt reads an optional integer field, returning NoPlayer (-1) when the
// field is absent
func optInt(el *etree.Element, path string) (int, error) {
	text, found := childText(el, path)
	if !found || text == "" {
		return NoPlayer, nil
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return NoPlayer, schemaErrorf("%s/%s is not an integer: %q", el.Tag, path, text)
	}

	return value, nil
}

// reqInt reads a mandatory integer field
func reqInt(el *etree.Element, path string) (int, error) {
	text, found := childText(el, path)
	if !found {
		return 0, schemaErrorf("%s/%s is missing", el.Tag, path)
	}

	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, schemaErrorf("%s/%s is not an integer: %q", el.Tag, path, text)
	}

	return value, nil
}

// boolField reads a "0"/"1" field, absent meaning false
func boolField(el *etree.Element, path string) bool {
	text, _ := childText(el, path)

	return text == "1" || strings.EqualFold(text, "true")
}

// dieValues reads the Value of every die under path (eg "Dice/Die")
func dieValues(el *etree.Element, path string) ([]int, error) {
	dice := el.FindElements(path)
	values := make([]int, 0, len(dice))

	for _, die := range dice {
		value, err := reqInt(die, "Value")
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}
