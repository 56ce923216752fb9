package ffmpeg

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := assetForPlatform(tt.goos, tt.goarch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("assetForPlatform() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("assetForPlatform() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBinaryName(t *testing.T) {
	tests := map[string]string{
		"ffmpeg":      "ffmpeg",
		"FFPROBE.EXE": "ffprobe",
		"ffplay":      "",
		"readme.txt":  "",
	}
	for in, want := range tests {
		if got := binaryName(in); got != want {
			t.Errorf("binaryName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(f)
	for _, name := range []string{"ffmpeg", "ffprobe", "LICENSE"} {
		entry, err := w.Create("bin/" + name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := entry.Write([]byte("binary " + name)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	installDir := filepath.Join(dir, "install")
	if err := extractArchive(archivePath, installDir); err != nil {
		t.Fatalf("extractArchive() error: %v", err)
	}

	paths := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix()),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix()),
	}
	if !binariesExist(paths) {
		t.Error("expected both binaries to be extracted")
	}
	if fileExists(filepath.Join(installDir, "LICENSE")) {
		t.Error("unexpected non-binary entry extracted")
	}
}

func TestExtractArchiveMissingProbe(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "bundle.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	w := zip.NewWriter(f)
	entry, err := w.Create("ffmpeg")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	_, _ = entry.Write([]byte("binary"))
	_ = w.Close()
	_ = f.Close()

	if err := extractArchive(archivePath, filepath.Join(dir, "out")); err == nil {
		t.Error("expected error for archive without ffprobe")
	}
}

func TestFFplayPathFromEnv(t *testing.T) {
	t.Setenv(envFFplayPath, "/opt/ffplay")

	got, err := FFplayPath()
	if err != nil {
		t.Fatalf("FFplayPath() error: %v", err)
	}
	if got != "/opt/ffplay" {
		t.Errorf("FFplayPath() = %q", got)
	}
}

func TestFFplayPathMissing(t *testing.T) {
	t.Setenv(envFFplayPath, "")
	t.Setenv("PATH", t.TempDir())

	_, err := FFplayPath()
	if !errors.Is(err, ErrNoPlayer) {
		t.Errorf("expected ErrNoPlayer, got %v", err)
	}
}

func TestExtractEmbeddedWithoutBundles(t *testing.T) {
	if bundledArchives() != nil {
		t.Skip("built with ffmpeg_embedded")
	}
	ok, err := extractEmbedded("ffmpeg-6.1-linux-64.zip", t.TempDir())
	if ok || err != nil {
		t.Errorf("extractEmbedded() = %v, %v; want false, nil", ok, err)
	}
}
