package typefile

import (
	"fmt"
	"strings"
)

// Category is a semantic grouping of column types. The zero value is
// Boolean; values outside the declared constants are programming errors.
type Category int

const (
	Boolean Category = iota
	Integer
	Serial
	FloatingPoint
	Text
	Blob
	Date
	DateTime
	Time

	numCategories = iota
)

var categoryNames = [numCategories]string{
	Boolean:       "boolean",
	Integer:       "integer",
	Serial:        "serial",
	FloatingPoint: "floating_point",
	Text:          "text",
	Blob:          "blob",
	Date:          "date",
	DateTime:      "datetime",
	Time:          "time",
}

var fileNames = [numCategories]string{
	Boolean:       "extendedDdlBooleanTypes",
	Integer:       "extendedDdlIntegerTypes",
	Serial:        "extendedDdlSerialTypes",
	FloatingPoint: "extendedDdlFloatingPointTypes",
	Text:          "extendedDdlTextTypes",
	Blob:          "extendedDdlBlobTypes",
	Date:          "extendedDdlDateTypes",
	DateTime:      "extendedDdlDateTimeTypes",
	Time:          "extendedDdlTimeTypes",
}

// Categories returns every category in canonical order.
func Categories() []Category {
	ret := make([]Category, 0, numCategories)
	for c := Category(0); c < numCategories; c++ {
		ret = append(ret, c)
	}
	return ret
}

func (c Category) valid() bool {
	return c >= 0 && c < numCategories
}

func (c Category) String() string {

	if !c.valid() {
		panic(fmt.Errorf("invalid category %d", int(c)))
	}
	return categoryNames[c]
}

// FileName is the name the category is bound to in a datatype file.
func (c Category) FileName() string {

	if !c.valid() {
		panic(fmt.Errorf("invalid category %d", int(c)))
	}
	return fileNames[c]
}

// ParseCategory resolves a category from its short name ("text",
// "floating-point") or its datatype file name ("extendedDdlTextTypes").
func ParseCategory(name string) (Category, error) {

	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for c := Category(0); c < numCategories; c++ {
		if n == categoryNames[c] || n == strings.ToLower(fileNames[c]) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

func categoryFromFileName(name string) (Category, bool) {
	for c := Category(0); c < numCategories; c++ {
		if fileNames[c] == name {
			return c, true
		}
	}
	return 0, false
}
