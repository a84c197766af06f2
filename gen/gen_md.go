package main

import (
	"bytes"
	"fmt"
)

const tableHeader = "| Environment | Flag | Description | Default |\n| - | - | - | - |\n"

func compileMd(entries []Entry) []byte {
	buffer := bytes.Buffer{}

	buffer.WriteString("# tinypost configuration reference\n\n")
	buffer.WriteString(tableHeader)

	previousSection := ""

	for _, entry := range entries {
		if entry.Section != previousSection {
			fmt.Fprintf(&buffer, "\n## %s\n\n%s", entry.Section, tableHeader)
			previousSection = entry.Section
		}

		fmt.Fprintf(&buffer, "| `%s` | `%s` | %s | `%s` |\n", entry.Env, entry.Flag, entry.Description, entry.Default)
	}

	return buffer.Bytes()
}
