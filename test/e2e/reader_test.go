package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

const fixtureFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Fixture Feed</title><description>Deterministic feed for UI tests</description>
<item><title>Fixture Post One</title><link>https://example.com/fixture-1</link><description>first</description></item>
<item><title>Fixture Post Two</title><link>https://example.com/fixture-2</link><description>second</description></item>
</channel></rss>`

// buildReader builds the rssagg binary into a temp dir.
func buildReader(t *testing.T) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "rssagg")

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// test/e2e -> module root
	rootDir := filepath.Join(wd, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/rssagg")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

func TestE2E_SeedAndDuplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary and drives it through a pty")
	}
	binPath := buildReader(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fixtureFeed))
	}))
	defer srv.Close()
	feedURL := srv.URL + "/feed"

	var outputBuf bytes.Buffer
	console, err := expect.NewConsole(
		expect.WithStdout(&outputBuf),
		expect.WithDefaultTimeout(10*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	if err := pty.Setsize(console.Tty(), &pty.Winsize{Cols: 120, Rows: 40}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	// A clean HOME keeps logs and config away from the real ~/.rssagg.
	homeDir := t.TempDir()
	cmd := exec.Command(binPath, "--direct", "--lang", "en", "--seed", feedURL)
	cmd.Env = append(os.Environ(),
		"HOME="+homeDir,
		"RSSAGG_CONFIG="+filepath.Join(homeDir, "none.yaml"),
		"RSSAGG_TRACE=",
	)
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start reader: %v", err)
	}
	defer func() { _ = cmd.Process.Kill() }()

	dumpLogs := func() {
		if logs, err := os.ReadFile(filepath.Join(homeDir, ".rssagg", "logs", "rssagg.log")); err == nil {
			t.Logf("rssagg.log:\n%s", logs)
		}
	}

	// 1. The seed feed loads.
	if _, err := console.ExpectString("RSS successfully loaded"); err != nil {
		dumpLogs()
		t.Fatalf("seed feed did not load: %v\nScreen:\n%s", err, outputBuf.String())
	}
	if _, err := console.ExpectString("Fixture Post Two"); err != nil {
		t.Fatalf("posts not rendered: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 2. Submitting the same URL again is rejected.
	time.Sleep(300 * time.Millisecond)
	if _, err := console.Send(feedURL + "\r"); err != nil {
		t.Fatalf("failed to type URL: %v", err)
	}
	if _, err := console.ExpectString("RSS already exists"); err != nil {
		dumpLogs()
		t.Fatalf("duplicate not reported: %v\nScreen:\n%s", err, outputBuf.String())
	}

	// 3. ctrl+c quits.
	if _, err := console.Send("\x03"); err != nil {
		t.Fatalf("failed to send ctrl+c: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Error("reader did not exit after ctrl+c")
	}
}
