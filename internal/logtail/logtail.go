package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log line.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	// Fields holds the remaining keys, rendered as text.
	Fields map[string]string
}

var reserved = map[string]bool{
	"severity":   true,
	"timestamp":  true,
	"message":    true,
	"caller":     true,
	"stacktrace": true,
}

// Parse decodes a JSON log line.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{Fields: make(map[string]string)}
	if s, ok := raw["severity"].(string); ok {
		e.Level = strings.ToUpper(s)
	}
	if s, ok := raw["message"].(string); ok {
		e.Message = s
	}
	if s, ok := raw["timestamp"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			e.Time = ts
		}
	}
	for k, v := range raw {
		if reserved[k] {
			continue
		}
		switch val := v.(type) {
		case string:
			e.Fields[k] = val
		default:
			b, _ := json.Marshal(val)
			e.Fields[k] = string(b)
		}
	}
	return e, true
}

// Format renders line as "HH:MM:SS LEVEL message key=value". Timestamps are
// shown in loc; nil means UTC.
func Format(line string, loc *time.Location) string {
	e, ok := Parse(line)
	if !ok {
		return line
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.In(loc).Format(time.TimeOnly))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", e.Level)
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := e.Fields[k]
		if strings.ContainsAny(v, " \t") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

// FormatLines formats every line.
func FormatLines(lines []string, loc *time.Location) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = Format(line, loc)
	}
	return out
}
