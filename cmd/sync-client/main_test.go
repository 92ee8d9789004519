package main

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFollowFormatsLoadEvents(t *testing.T) {
	in := strings.Join([]string{
		`{"type":"welcome","tcp_clients":1}`,
		`{"type":"characters.loaded","source":"csv:Characters","count":12,"error":"gviz \"Characters\": status 500","loaded_at":"2024-05-01T15:00:00Z"}`,
		`{"type":"characters.loaded","source":"gviz:Lore","count":3,"loaded_at":"2024-05-02T09:30:00Z"}`,
	}, "\n")

	var out strings.Builder
	err := follow(strings.NewReader(in), false, &out)
	assert.True(t, errors.Is(err, io.EOF))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		`{"type":"welcome","tcp_clients":1}`,
		`2024-05-01T15:00:00Z  12 characters from csv:Characters  (fallbacks: gviz "Characters": status 500)`,
		`2024-05-02T09:30:00Z  3 characters from gviz:Lore`,
	}, lines)
}

func TestFollowRaw(t *testing.T) {
	var out strings.Builder
	_ = follow(strings.NewReader("a\nb\n"), true, &out)
	assert.Equal(t, "a\nb\n", out.String())
}
