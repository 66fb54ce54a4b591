package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/janekbaraniewski/ohmydashboard/internal/parsers"
)

// DefaultSQLiteCLI is the command-line tool used by CLIQuerier.
const DefaultSQLiteCLI = "sqlite3"

// CLIQuerier runs queries through the sqlite3 command-line tool in JSON
// output mode.
type CLIQuerier struct {
	bin  string
	path string
}

func NewCLIQuerier(bin, path string) *CLIQuerier {
	if strings.TrimSpace(bin) == "" {
		bin = DefaultSQLiteCLI
	}
	return &CLIQuerier{bin: bin, path: path}
}

func (c *CLIQuerier) Query(ctx context.Context, query string) ([]parsers.Row, error) {
	bin, err := exec.LookPath(c.bin)
	if err != nil {
		return nil, fmt.Errorf("sqlite cli %q: %w", c.bin, err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-readonly", "-json", c.path, query)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("sqlite cli query: %s", msg)
	}
	return parseCLIOutput(stdout.Bytes())
}

func (c *CLIQuerier) Close() error { return nil }

// parseCLIOutput decodes `sqlite3 -json` output: a JSON array of objects, or
// nothing at all when the result set is empty.
func parseCLIOutput(out []byte) ([]parsers.Row, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(out))
	dec.UseNumber()
	var rows []parsers.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode sqlite cli output: %w", err)
	}
	return rows, nil
}
