package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestReadScriptPlainUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(path, []byte("第一话：开始。\n"), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	text, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript returned error: %v", err)
	}
	if text != "第一话：开始。\n" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestReadScriptStripsUTF8BOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	text, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript returned error: %v", err)
	}
	if text != "hello" {
		t.Fatalf("expected BOM stripped, got %q", text)
	}
}

func TestReadScriptDecodesUTF16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	// "hi" in UTF-16LE with BOM.
	if err := os.WriteFile(path, []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	text, err := ReadScript(path)
	if err != nil {
		t.Fatalf("ReadScript returned error: %v", err)
	}
	if text != "hi" {
		t.Fatalf("expected decoded UTF-16, got %q", text)
	}
}

func TestReadScriptRejectsInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.txt")
	// "ok " followed by a GBK-encoded character.
	if err := os.WriteFile(path, []byte{'o', 'k', ' ', 0xC4, 0xE3}, 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	_, err := ReadScript(path)
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
	if !strings.Contains(err.Error(), "offset 3") {
		t.Fatalf("expected byte offset in error, got %v", err)
	}
}

func TestReadScriptMissing(t *testing.T) {
	_, err := ReadScript(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestSynthesizeInvokesEdgeTTS(t *testing.T) {
	tts := NewEdgeTTS("", "zh-CN-XiaoxiaoNeural", nil)
	var gotName string
	var gotArgs []string
	tts.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	})
	err := tts.Synthesize(context.Background(), Request{Text: "旁白", AudioPath: "/w/audio.mp3", SubtitlesPath: "/w/sub.srt"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if gotName != "edge-tts" {
		t.Fatalf("expected edge-tts binary, got %q", gotName)
	}
	want := []string{"--voice", "zh-CN-XiaoxiaoNeural", "--text", "旁白", "--write-media", "/w/audio.mp3", "--write-subtitles", "/w/sub.srt"}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Fatalf("args mismatch\n got: %q\nwant: %q", gotArgs, want)
	}
}

func TestSynthesizePropagatesFailure(t *testing.T) {
	tts := NewEdgeTTS("edge-tts", "v", nil)
	boom := errors.New("exit status 1: 403 Forbidden")
	tts.WithCommandRunner(func(context.Context, string, ...string) error { return boom })
	err := tts.Synthesize(context.Background(), Request{Text: "x", AudioPath: "a", SubtitlesPath: "s"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}

func TestSynthesizeRequiresPaths(t *testing.T) {
	tts := NewEdgeTTS("edge-tts", "v", nil)
	tts.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("runner should not be called")
		return nil
	})
	if err := tts.Synthesize(context.Background(), Request{Text: "x"}); err == nil {
		t.Fatal("expected error for missing paths")
	}
}
