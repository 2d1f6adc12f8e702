package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hanpama/exprel/eval"
	"github.com/hanpama/exprel/internal/telemetry"
)

const usage = `exprel - resolve path expressions against a JSON document

USAGE:
  exprel -data <file.json> [flags] <path>...

Paths are dotted with optional integer indexes, e.g. users[0].name.
Splitting is mechanical; there is no expression grammar.

FLAGS:
  -data <file>            JSON document to resolve against (required)
  -pretty                 Pretty-print JSON results
  -otel.endpoint <addr>   OTLP collector endpoint
  -otel.service <name>    OpenTelemetry service name (default: exprel)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("exprel", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer)) // silence automatic output
	dataPath := fs.String("data", "", "")
	pretty := fs.Bool("pretty", false, "")
	otelEndpoint := fs.String("otel.endpoint", "", "")
	otelService := fs.String("otel.service", "exprel", "")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, usage)
		return err
	}
	if *dataPath == "" || fs.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("exprel: -data and at least one path are required")
	}

	shutdown, err := telemetry.Setup(*otelEndpoint, *otelService)
	if err != nil {
		return fmt.Errorf("telemetry setup: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	doc, err := loadDocument(*dataPath)
	if err != nil {
		return err
	}
	vars := map[string]any{}
	for name, field := range doc.GetFields() {
		vars[name] = field
	}
	ev := eval.New(eval.WithVariables(vars))

	ctx := context.Background()
	for _, path := range fs.Args() {
		segments, err := splitPath(path)
		if err != nil {
			return err
		}
		result, err := ev.Resolve(ctx, segments...)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		out, err := renderJSON(result, *pretty)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s = %s\n", path, out)
	}
	return nil
}

func loadDocument(path string) (*structpb.Struct, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", path, err)
	}
	return doc, nil
}

// splitPath turns "users[0].name" into ["users", 0, "name"]. Empty segments
// and unterminated brackets are rejected.
func splitPath(path string) ([]any, error) {
	var segments []any
	for _, part := range strings.Split(path, ".") {
		name := part
		var indexes []any
		for {
			open := strings.IndexByte(name, '[')
			if open < 0 {
				break
			}
			rest := name[open+1:]
			closing := strings.IndexByte(rest, ']')
			if closing < 0 {
				return nil, fmt.Errorf("exprel: unterminated index in %q", path)
			}
			token := rest[:closing]
			if idx, err := strconv.Atoi(token); err == nil {
				indexes = append(indexes, idx)
			} else {
				indexes = append(indexes, strings.Trim(token, `"'`))
			}
			name = name[:open] + rest[closing+1:]
		}
		if name != "" {
			segments = append(segments, name)
		}
		segments = append(segments, indexes...)
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("exprel: empty path %q", path)
	}
	return segments, nil
}

func renderJSON(v any, pretty bool) (string, error) {
	switch pv := v.(type) {
	case *structpb.Struct:
		v = pv.AsMap()
	case *structpb.ListValue:
		v = pv.AsSlice()
	case *structpb.Value:
		v = pv.AsInterface()
	}
	var out []byte
	var err error
	if pretty {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
