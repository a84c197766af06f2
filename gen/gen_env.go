package main

import (
	"bytes"
	"fmt"
)

func compileEnv(entries []Entry) []byte {
	buffer := bytes.Buffer{}
	buffer.WriteString("# tinypost example configuration\n\n")

	for _, entry := range entries {
		value := entry.Default

		if value != "" {
			value = fmt.Sprintf("%q", value)
		}

		fmt.Fprintf(&buffer, "# %s\n%s=%s\n\n", entry.Description, entry.Env, value)
	}

	return buffer.Bytes()
}
