package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Disk writes files below root and returns paths of the form "uploads/<category>/<filename>".
type Disk struct {
	root   string
	prefix string
	create func(name string) (io.WriteCloser, error)
}

func NewDisk(root string) *Disk {
	return &Disk{
		root:   root,
		prefix: "uploads",
		create: func(name string) (io.WriteCloser, error) { return os.Create(name) },
	}
}

func (d *Disk) Root() string {
	return d.root
}

func (d *Disk) Save(_ context.Context, category, filename string, r io.Reader) (string, error) {
	k := key(category, filename)
	dst := filepath.Join(d.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		zap.L().Error("can't create upload directory", zap.Error(err))
		return "", err
	}

	f, err := d.create(dst)
	if err != nil {
		zap.L().Error("can't create upload file", zap.Error(err))
		return "", err
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		zap.L().Error("can't write upload file", zap.Error(err))
		return "", fmt.Errorf("can't write %s: %w", k, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		zap.L().Error("can't close upload file", zap.Error(err))
		return "", fmt.Errorf("can't close %s: %w", k, err)
	}
	return path.Join(d.prefix, k), nil
}

func (d *Disk) Remove(_ context.Context, publicPath string) error {
	k := strings.TrimPrefix(strings.TrimPrefix(publicPath, "/"), d.prefix+"/")
	if k == "" || strings.Contains(k, "..") {
		return fmt.Errorf("invalid storage path %q", publicPath)
	}
	err := os.Remove(filepath.Join(d.root, filepath.FromSlash(k)))
	if err != nil && !os.IsNotExist(err) {
		zap.L().Error("can't remove upload file", zap.Error(err))
		return err
	}
	return nil
}
