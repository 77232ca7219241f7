// Package tofu locates an OpenTofu binary, downloading and caching a pinned
// release when none is configured, and reads Terraform outputs through it.
package tofu

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/terraform-exec/tfexec"
	"github.com/opentofu/tofudl"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// binaryDownloader fetches the tofu binary for the current platform
type binaryDownloader interface {
	download(ctx context.Context) ([]byte, error)
}

// mirrorDownloader downloads DefaultVersion through a tofudl mirror cached in dir
type mirrorDownloader struct {
	dir string
}

func (m mirrorDownloader) download(ctx context.Context) ([]byte, error) {
	dl, err := tofudl.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tofu downloader: %w", err)
	}

	storage, err := tofudl.NewFilesystemStorage(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tofu filesystem storage: %w", err)
	}
	mirror, err := tofudl.NewMirror(
		tofudl.MirrorConfig{
			AllowStale:           true, // Use cached binary if download fails
			APICacheTimeout:      -1,   // Cache API responses indefinitely
			ArtifactCacheTimeout: -1,   // Cache binaries indefinitely
		},
		storage,
		dl,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tofu mirror: %w", err)
	}

	binary, err := mirror.Download(ctx, tofudl.DownloadOptVersion(tofudl.Version(DefaultVersion)))
	if err != nil {
		return nil, fmt.Errorf("failed to download tofu %s: %w", DefaultVersion, err)
	}
	return binary, nil
}

func getCacheDir(appFs afero.Fs) (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}

	tofuCacheDir := filepath.Join(userCacheDir, "neo", "tofu")
	if err := appFs.MkdirAll(tofuCacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create neo/tofu cache directory: %w", err)
	}

	return tofuCacheDir, nil
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "tofu.exe"
	}
	return "tofu"
}

// installExecutable writes the downloaded binary into cacheDir unless a
// cached copy is already there
func installExecutable(ctx context.Context, appFs afero.Fs, cacheDir string, dl binaryDownloader) (string, error) {
	execPath := filepath.Join(cacheDir, executableName())

	exists, err := afero.Exists(appFs, execPath)
	if err != nil {
		return "", fmt.Errorf("failed to check for cached tofu binary: %w", err)
	}
	if exists {
		return execPath, nil
	}

	binary, err := dl.download(ctx)
	if err != nil {
		return "", err
	}

	if err := afero.WriteFile(appFs, execPath, binary, 0755); err != nil {
		return "", fmt.Errorf("failed to write tofu binary to cache: %w", err)
	}

	return execPath, nil
}

// Executable returns override when set, otherwise the cached tofu binary,
// downloading DefaultVersion into ~/.cache/neo/tofu on first use.
func Executable(ctx context.Context, appFs afero.Fs, override string) (string, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "tofu.Executable")
	defer span.End()

	if override != "" {
		span.SetAttributes(attribute.String("tofu.exec_path", override))
		if _, err := appFs.Stat(override); err != nil {
			span.RecordError(err)
			return "", fmt.Errorf("tofu binary %s: %w", override, err)
		}
		return override, nil
	}

	cacheDir, err := getCacheDir(appFs)
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	execPath, err := installExecutable(ctx, appFs, cacheDir, mirrorDownloader{dir: cacheDir})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to get executable: %w", err)
	}

	span.SetAttributes(attribute.String("tofu.exec_path", execPath))
	return execPath, nil
}

// outputReader is the tfexec call used by Outputs
type outputReader interface {
	Output(ctx context.Context, opts ...tfexec.OutputOption) (map[string]tfexec.OutputMeta, error)
}

// Outputs reads the root module outputs of the state in workingDir and
// returns each output's JSON value by name.
func Outputs(ctx context.Context, workingDir, execPath string) (map[string]json.RawMessage, error) {
	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "tofu.Outputs")
	defer span.End()

	span.SetAttributes(attribute.String("tofu.working_dir", workingDir))

	tf, err := tfexec.NewTerraform(workingDir, execPath)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create terraform executor: %w", err)
	}

	return readOutputs(ctx, tf)
}

func readOutputs(ctx context.Context, tf outputReader) (map[string]json.RawMessage, error) {
	meta, err := tf.Output(signalSafeContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to read terraform outputs: %w", err)
	}

	values := make(map[string]json.RawMessage, len(meta))
	for name, m := range meta {
		values[name] = m.Value
	}
	return values, nil
}
