package editing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/umair4234/Thumbgenai/internal/credentials"
	"github.com/umair4234/Thumbgenai/internal/imageio"
)

var (
	// ErrQuota is reported by a worker when the key is out of quota.
	ErrQuota = errors.New("backend quota exhausted")
	// ErrUnauthorized is reported by a worker when the key is rejected.
	ErrUnauthorized = errors.New("backend rejected credentials")
)

// DirBackend hands jobs to an external worker through a spool directory.
// Each job gets its own directory holding the manifest and payloads. The
// worker answers with a result.<ext> image or an error.txt file.
type DirBackend struct {
	Root string
	Key  string
	Poll time.Duration
	Log  pslog.Logger
}

// NewDirBackend returns a DirBackend rooted at root.
func NewDirBackend(root string, log pslog.Logger) *DirBackend {
	return &DirBackend{Root: root, Poll: 500 * time.Millisecond, Log: log}
}

// Generate implements Backend.
func (d *DirBackend) Generate(ctx context.Context, req *Request) (*Result, error) {
	return d.run(ctx, req)
}

// Edit implements Backend.
func (d *DirBackend) Edit(ctx context.Context, req *Request) (*Result, error) {
	if len(req.Source) == 0 {
		return nil, ErrNoImage
	}
	return d.run(ctx, req)
}

func (d *DirBackend) run(ctx context.Context, req *Request) (*Result, error) {
	dir, err := d.Submit(req)
	if err != nil {
		return nil, err
	}
	return d.Await(ctx, dir, req)
}

// Submit writes req into its job directory and returns the directory. The
// manifest is written last so a worker never sees a partial job.
func (d *DirBackend) Submit(req *Request) (string, error) {
	dir := filepath.Join(d.Root, req.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	_ = os.Remove(filepath.Join(dir, ErrorFile))

	for name, data := range map[string][]byte{
		SourceFile:    req.Source,
		MaskFile:      req.Mask,
		CompositeFile: req.Composite,
	} {
		if len(data) == 0 {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return "", fmt.Errorf("write %s: %w", name, err)
		}
	}

	m := req.Manifest()
	if d.Key != "" {
		m.Key = credentials.Hint(d.Key)
	}
	var buf bytes.Buffer
	if err := WriteManifest(&buf, m); err != nil {
		return "", err
	}
	tmp := filepath.Join(dir, ManifestFile+".tmp")
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, ManifestFile)); err != nil {
		return "", fmt.Errorf("publish manifest: %w", err)
	}
	d.logger().Info("request queued", "id", req.ID, "mode", string(req.Mode), "regions", len(req.Regions), "dir", dir)
	return dir, nil
}

// Await polls dir until the worker answers or ctx ends.
func (d *DirBackend) Await(ctx context.Context, dir string, req *Request) (*Result, error) {
	poll := d.Poll
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		res, done, err := d.check(dir, req)
		if done {
			return res, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (d *DirBackend) check(dir string, req *Request) (*Result, bool, error) {
	if data, err := os.ReadFile(filepath.Join(dir, ErrorFile)); err == nil {
		return nil, true, workerError(strings.TrimSpace(string(data)))
	}
	matches, _ := filepath.Glob(filepath.Join(dir, ResultPrefix+"*"))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, true, err
		}
		mime, _, err := imageio.Sniff(data)
		if err != nil {
			return nil, true, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		res := &Result{Data: data, MimeType: mime}
		if req != nil && req.Seed != nil {
			res.UsedSeed = *req.Seed
		}
		d.logger().Info("result received", "dir", dir, "mime", mime, "bytes", len(data))
		return res, true, nil
	}
	return nil, false, nil
}

// workerError maps the first word of error.txt onto a sentinel error.
func workerError(msg string) error {
	kind, rest, _ := strings.Cut(msg, ":")
	rest = strings.TrimSpace(rest)
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "quota":
		return fmt.Errorf("%w: %s", ErrQuota, rest)
	case "unauthorized":
		return fmt.Errorf("%w: %s", ErrUnauthorized, rest)
	}
	return fmt.Errorf("backend: %s", msg)
}

func (d *DirBackend) logger() pslog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return pslog.Ctx(context.Background())
}
