package generator_test

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mangareel/internal/config"
	"mangareel/internal/generator"
	"mangareel/internal/services"
	"mangareel/internal/testsupport"
)

type call struct {
	name string
	args []string
}

// recorder mimics the tools by creating the files they would write.
type recorder struct {
	calls  []call
	failOn string
}

func (r *recorder) run(_ context.Context, name string, args ...string) error {
	r.calls = append(r.calls, call{name: name, args: append([]string(nil), args...)})
	if r.failOn != "" && strings.HasSuffix(name, r.failOn) {
		return errors.New("exit status 1: simulated failure")
	}
	switch filepath.Base(name) {
	case "edge-tts":
		for i := 0; i+1 < len(args); i++ {
			if args[i] == "--write-media" || args[i] == "--write-subtitles" {
				if err := os.WriteFile(args[i+1], []byte("stub"), 0o644); err != nil {
					return err
				}
			}
		}
	default:
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("stub"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func seedInputs(t *testing.T, cfg *config.Config, pages ...string) {
	t.Helper()
	for _, page := range pages {
		testsupport.WriteImage(t, filepath.Join(cfg.Paths.ProcessedDir, page), 9, 16, color.White)
	}
	testsupport.WriteText(t, cfg.Paths.ScriptFile, "很久以前，有一座山。")
}

func assertTempsRemoved(t *testing.T, cfg *config.Config) {
	t.Helper()
	for _, name := range []string{generator.ManifestName, generator.SlideshowName, generator.AudioName, generator.SubtitlesName} {
		testsupport.AssertMissing(t, filepath.Join(cfg.Paths.WorkDir, name))
	}
}

func TestRunInvokesToolsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedInputs(t, cfg, "002.png", "001.png", "003.png", "004.png", "005.png")
	rec := &recorder{}

	result, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(rec.calls) != 3 {
		t.Fatalf("expected 3 tool calls, got %d: %+v", len(rec.calls), rec.calls)
	}
	names := []string{rec.calls[0].name, rec.calls[1].name, rec.calls[2].name}
	if !reflect.DeepEqual(names, []string{"ffmpeg", "edge-tts", "ffmpeg"}) {
		t.Fatalf("unexpected call order %v", names)
	}

	encode := strings.Join(rec.calls[0].args, " ")
	if !strings.Contains(encode, "-f concat -safe 0 -i "+filepath.Join(cfg.Paths.WorkDir, generator.ManifestName)) {
		t.Fatalf("encode args missing concat input: %s", encode)
	}
	if !strings.Contains(encode, "fade=t=in:st=0:d=1,fade=t=out:st=14:d=1,") {
		t.Fatalf("encode args missing fade filter: %s", encode)
	}

	tts := rec.calls[1].args
	if tts[1] != "zh-CN-XiaoxiaoNeural" || tts[3] != "很久以前，有一座山。" {
		t.Fatalf("unexpected edge-tts args %q", tts)
	}

	mux := rec.calls[2].args
	if mux[len(mux)-1] != cfg.Paths.FinalVideo {
		t.Fatalf("mux output = %q, want %q", mux[len(mux)-1], cfg.Paths.FinalVideo)
	}

	if result.Plan.TotalSeconds != 15 || result.Plan.FadeOutStart != 14 {
		t.Fatalf("unexpected plan %+v", result.Plan)
	}
	if len(result.Frames) != 5 || filepath.Base(result.Frames[0]) != "001.png" {
		t.Fatalf("frames not sorted: %v", result.Frames)
	}
	if _, err := os.Stat(cfg.Paths.FinalVideo); err != nil {
		t.Fatalf("expected final video: %v", err)
	}
	assertTempsRemoved(t, cfg)
}

func TestRunWithoutImagesInvokesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteText(t, cfg.Paths.ScriptFile, "narration")
	rec := &recorder{}

	_, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run)).Run(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no tool calls, got %+v", rec.calls)
	}
	testsupport.AssertMissing(t, filepath.Join(cfg.Paths.WorkDir, generator.ManifestName))
}

func TestRunWithoutScriptInvokesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteImage(t, filepath.Join(cfg.Paths.ProcessedDir, "001.png"), 9, 16, color.White)
	rec := &recorder{}

	_, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run)).Run(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), cfg.Paths.ScriptFile) {
		t.Fatalf("expected script path in error, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("expected no tool calls, got %+v", rec.calls)
	}
}

func TestRunIgnoresUppercasePNG(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedInputs(t, cfg, "001.PNG")
	rec := &recorder{}

	_, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run)).Run(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for uppercase extension, got %v", err)
	}
}

func TestRunCleansUpWhenNarrationFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	seedInputs(t, cfg, "001.png", "002.png")
	rec := &recorder{failOn: "edge-tts"}

	_, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run)).Run(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "simulated failure") {
		t.Fatalf("expected tool output in error, got %v", err)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("mux must not run after narration failure, calls: %+v", rec.calls)
	}
	assertTempsRemoved(t, cfg)
	testsupport.AssertMissing(t, cfg.Paths.FinalVideo)
}

func TestRunWithStubBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubTools("9,16,6.0"))
	seedInputs(t, cfg, "a.png", "b.png")

	if _, err := generator.New(cfg, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	calls := testsupport.StubCalls(t, cfg)
	if len(calls) != 3 {
		t.Fatalf("expected 3 stub calls, got %v", calls)
	}
	if !strings.HasPrefix(calls[1], "edge-tts --voice") {
		t.Fatalf("expected edge-tts second, got %q", calls[1])
	}
	if _, err := os.Stat(cfg.Paths.FinalVideo); err != nil {
		t.Fatalf("expected final video: %v", err)
	}
	assertTempsRemoved(t, cfg)
}

func TestMuxArgs(t *testing.T) {
	got := generator.MuxArgs("temp_video.mp4", "audio.mp3", "out/final.mp4", config.Mux{Volume: 1, AudioCodec: "aac", AudioBitrate: "192k"})
	want := []string{"-y", "-i", "temp_video.mp4", "-i", "audio.mp3", "-filter:a", "volume=1", "-c:v", "copy", "-c:a", "aac", "-b:a", "192k", "-shortest", "out/final.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MuxArgs mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestCleanupSkipsAbsentFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "audio.mp3")
	testsupport.WriteText(t, present, "x")

	removed, err := generator.Cleanup(filepath.Join(dir, "image_list.txt"), present, "")
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if len(removed) != 1 || removed[0] != present {
		t.Fatalf("unexpected removed list %v", removed)
	}
	testsupport.AssertMissing(t, present)
}

func TestToolCheckRunsAfterInputChecks(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	rec := &recorder{}
	checked := 0
	check := generator.WithToolCheck(func(context.Context) error {
		checked++
		return services.Wrap(services.ErrExternalTool, "preflight", "tools", "missing required tools: edge-tts", nil)
	})

	_, err := generator.New(cfg, nil, generator.WithCommandRunner(rec.run), check).Run(context.Background())
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound without frames, got %v", err)
	}
	if checked != 0 {
		t.Fatal("tool check ran before frames were found")
	}

	seedInputs(t, cfg, "001.png")
	_, err = generator.New(cfg, nil, generator.WithCommandRunner(rec.run), check).Run(context.Background())
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected tool check failure, got %v", err)
	}
	if checked != 1 || len(rec.calls) != 0 {
		t.Fatalf("expected one check and no tool calls, got %d checks and %+v", checked, rec.calls)
	}
}
