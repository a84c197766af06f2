package main

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/tinypost/tinypost/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Entry is one leaf of the configuration tree
type Entry struct {
	Env         string
	Flag        string
	Section     string
	Description string
	Default     string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	entries := collectEntries(config.NewDefaultConfiguration())

	log.Info().Msg("Generating example env file")

	if err := os.WriteFile(".env.example", compileEnv(entries), 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write example env file")
	}

	log.Info().Msg("Generating config reference markdown file")

	if err := os.WriteFile("config.gen.md", compileMd(entries), 0644); err != nil {
		log.Fatal().Err(err).Msg("Failed to write config reference")
	}
}

func collectEntries(cfg *config.Config) []Entry {
	entries := make([]Entry, 0)
	walk(reflect.TypeOf(cfg).Elem(), reflect.ValueOf(cfg).Elem(), "", "", "", &entries)
	return entries
}

func walk(parent reflect.Type, parentValue reflect.Value, envPath string, flagPath string, section string, entries *[]Entry) {
	for i := 0; i < parent.NumField(); i++ {
		field := parent.Field(i)
		tag := field.Tag.Get("yaml")

		// not settable from the outside
		if tag == "-" {
			continue
		}

		value := parentValue.Field(i)

		switch field.Type.Kind() {
		case reflect.Struct:
			childSection := section
			if childSection == "" {
				childSection = tag
			}
			walk(field.Type, value, envPath+strings.ToUpper(field.Name)+"_", flagPath+tag+".", childSection, entries)
		case reflect.Bool, reflect.String, reflect.Slice, reflect.Int, reflect.Int64:
			*entries = append(*entries, Entry{
				Env:         config.DefaultNamePrefix + envPath + strings.ToUpper(field.Name),
				Flag:        "--" + flagPath + tag,
				Section:     section,
				Description: field.Tag.Get("description"),
				Default:     formatDefault(value),
			})
		default:
			log.Warn().Str("field", field.Name).Str("kind", field.Type.Kind().String()).Msg("Skipping unsupported field")
		}
	}
}

func formatDefault(value reflect.Value) string {
	if value.Kind() == reflect.Slice {
		if values, ok := value.Interface().([]string); ok {
			return strings.Join(values, ",")
		}
	}
	return fmt.Sprintf("%v", value.Interface())
}
