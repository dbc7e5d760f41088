package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mangareel/internal/config"
)

// StubTools describes fake ffmpeg, ffprobe, and edge-tts executables written
// for a test. Every invocation appends "<tool> <args>" to CallLog.
type StubTools struct {
	Dir     string
	CallLog string
}

// ffmpegStub creates its last argument unless it is "-", in which case it
// streams a half-scale square wave as s16le PCM (about -6 dBFS).
const ffmpegStub = `#!/bin/sh
echo "ffmpeg $*" >> "%LOG%"
for last; do :; done
if [ "$last" = "-" ]; then
  i=0
  while [ $i -lt 2000 ]; do printf '\000\100\000\300'; i=$((i+1)); done
  exit 0
fi
mkdir -p "$(dirname "$last")"
echo stub > "$last"
`

const ttsStub = `#!/bin/sh
echo "edge-tts $*" >> "%LOG%"
while [ $# -gt 0 ]; do
  case "$1" in
    --write-media|--write-subtitles) echo stub > "$2"; shift ;;
  esac
  shift
done
`

// ffprobeStub prints a demuxer warning on stderr before the probe line, the
// way ffprobe does for files with a damaged index.
const ffprobeStub = `#!/bin/sh
echo "ffprobe $*" >> "%LOG%"
echo '[mov,mp4,m4a,3gp,3g2,mj2 @ 0x55d0] stream 0, offset 0x30: partial file' >&2
echo '%PROBE%'
`

// WithStubTools writes stub binaries and points the config at them. probe is
// the CSV line the fake ffprobe prints, e.g. "1080,1920,16.2".
func WithStubTools(probe string) ConfigOption {
	return func(b *configBuilder) {
		tools := InstallStubTools(b.t, filepath.Join(b.baseDir, "bin"), probe)
		b.cfg.Video.FFmpegBinary = filepath.Join(tools.Dir, "ffmpeg")
		b.cfg.Narration.Binary = filepath.Join(tools.Dir, "edge-tts")
		b.cfg.Validation.FFprobeBinary = filepath.Join(tools.Dir, "ffprobe")
	}
}

// InstallStubTools writes the stub executables into dir.
func InstallStubTools(t testing.TB, dir, probe string) StubTools {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	logPath := filepath.Join(dir, "calls.log")
	scripts := map[string]string{
		"ffmpeg":   ffmpegStub,
		"edge-tts": ttsStub,
		"ffprobe":  strings.ReplaceAll(ffprobeStub, "%PROBE%", probe),
	}
	for name, body := range scripts {
		body = strings.ReplaceAll(body, "%LOG%", logPath)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	return StubTools{Dir: dir, CallLog: logPath}
}

// StubCalls returns the recorded stub invocations for a config built with
// WithStubTools.
func StubCalls(t testing.TB, cfg *config.Config) []string {
	t.Helper()
	return readCalls(t, filepath.Join(BaseDir(cfg), "bin", "calls.log"))
}

// Calls returns the recorded invocations, one per line.
func (s StubTools) Calls(t testing.TB) []string {
	t.Helper()
	return readCalls(t, s.CallLog)
}

func readCalls(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read call log: %v", err)
	}
	var calls []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			calls = append(calls, line)
		}
	}
	return calls
}
