package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	synchub "loremaker/internal/sync"
	"loremaker/pkg/logger"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP event feed address")
	raw := flag.Bool("raw", false, "print events as received")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOREMAKER_LOG_MODE"))
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log = log.With("component", "sync-client")

	for {
		if err := run(*addr, *raw, os.Stdout, log); err != nil {
			log.Warn("disconnected", "addr", *addr, "error", err)
		}
		time.Sleep(1 * time.Second)
	}
}

func run(addr string, raw bool, out io.Writer, log *logger.Logger) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Info("connected", "addr", addr)
	return follow(conn, raw, out)
}

// follow prints one line per feed message until r is exhausted.
func follow(r io.Reader, raw bool, out io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Bytes()
		if raw {
			fmt.Fprintln(out, string(line))
			continue
		}

		var ev synchub.LoadEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.Type != synchub.EventCharactersLoaded {
			fmt.Fprintln(out, string(line))
			continue
		}
		fmt.Fprintln(out, formatEvent(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return io.EOF
}

func formatEvent(ev synchub.LoadEvent) string {
	s := fmt.Sprintf("%s  %d characters from %s", ev.LoadedAt.Format(time.RFC3339), ev.Count, ev.Source)
	if ev.Error != "" {
		s += "  (fallbacks: " + ev.Error + ")"
	}
	return s
}
