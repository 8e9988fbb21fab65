package export

import (
	"io"
	"sort"
)

// Format is one renderer together with its file extension and MIME type.
type Format struct {
	Ext         string
	ContentType string
	Write       func(io.Writer, Payload) error
}

var formats = map[string]Format{
	"csv":  {Ext: "csv", ContentType: "text/csv; charset=utf-8", Write: WriteCSV},
	"xlsx": {Ext: "xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Write: WriteXLSX},
	"pdf":  {Ext: "pdf", ContentType: "application/pdf", Write: WritePDF},
}

// Lookup returns the renderer registered for name.
func Lookup(name string) (Format, bool) {
	f, ok := formats[name]
	return f, ok
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
