package channels

import (
	"fmt"
	"io"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

const listingIndent = "  "

func (d Definition) String() string {
	if d.Unit == "" {
		return d.Name
	}

	return fmt.Sprintf("%s (%s)", d.Name, d.Unit)
}

// WriteCatalogue writes each category followed by the channels of the table
// it selects, wrapped to width. Catalogued channels the table does not define
// are listed separately.
func WriteCatalogue(w io.Writer, t Table, categories []Category, width uint) error {
	for _, c := range categories {
		var defined, missing []string

		for _, name := range c.Channels() {
			if def, ok := t.Lookup(name); ok {
				defined = append(defined, def.String())
			} else {
				missing = append(missing, name)
			}
		}

		if _, err := fmt.Fprintf(w, "%s (%d channels)\n", c, len(defined)); err != nil {
			return err
		}

		if err := writeWrapped(w, strings.Join(defined, ", "), width); err != nil {
			return err
		}

		if len(missing) > 0 {
			if err := writeWrapped(w, "not defined: "+strings.Join(missing, ", "), width); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeWrapped(w io.Writer, s string, width uint) error {
	if s == "" {
		return nil
	}

	if width > uint(len(listingIndent)) {
		s = wordwrap.WrapString(s, width-uint(len(listingIndent)))
	}

	for _, line := range strings.Split(s, "\n") {
		if _, err := fmt.Fprintln(w, listingIndent+line); err != nil {
			return err
		}
	}

	return nil
}
