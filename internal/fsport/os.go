package fsport

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/mnott/dircomp/internal/hash"
)

// port serves the Port contract from an afero filesystem. Production
// runs use the OS filesystem; tests may hand it a MemMapFs.
type port struct {
	fsys afero.Fs
}

// New returns a Port backed by the given afero filesystem.
func New(fsys afero.Fs) Port {
	return &port{fsys: fsys}
}

// NewOS returns a Port over the local filesystem.
func NewOS() Port {
	return New(afero.NewOsFs())
}

func (p *port) ListChildren(path string) ([]Child, error) {
	infos, err := afero.ReadDir(p.fsys, path)
	if err != nil {
		return nil, classify(err, nil)
	}
	children := make([]Child, 0, len(infos))
	for _, info := range infos {
		children = append(children, Child{
			Name: info.Name(),
			Kind: kindOf(info.Mode()),
		})
	}
	return children, nil
}

func (p *port) Describe(path string) (*Descriptor, error) {
	info, err := p.lstat(path)
	if err != nil {
		return nil, classify(err, nil)
	}

	d := &Descriptor{
		Kind:     kindOf(info.Mode()),
		Size:     info.Size(),
		ModTime:  info.ModTime(),
		Identity: identityOf(info, path),
	}
	d.ChangeTime, d.AccessTime = statTimes(info)

	switch d.Kind {
	case KindFile, KindSymlink:
		target := path
		d.HashFunc = func() ([]byte, error) { return p.Hash(target) }
	}

	if d.Kind == KindSymlink {
		p.describeLink(path, d)
	}
	return d, nil
}

// describeLink fills the symlink-specific fields: where the link points
// and what it resolves to. A dangling link leaves the target fields
// zero.
func (p *port) describeLink(path string, d *Descriptor) {
	if lr, ok := p.fsys.(afero.LinkReader); ok {
		if target, err := lr.ReadlinkIfPossible(path); err == nil {
			d.LinkTarget = target
		}
	}
	info, err := p.fsys.Stat(path) // follows the link
	if err != nil {
		return
	}
	d.TargetKind = kindOf(info.Mode())
	d.TargetIdentity = identityOf(info, resolvedPath(path, d.LinkTarget))
	d.TargetSize = info.Size()
	d.TargetModTime = info.ModTime()
	d.TargetChangeTime, d.TargetAccessTime = statTimes(info)
}

func (p *port) Hash(path string) ([]byte, error) {
	sum, err := hash.File(p.fsys, path)
	if err != nil {
		return nil, classify(err, ErrRead)
	}
	return sum, nil
}

func (p *port) lstat(path string) (os.FileInfo, error) {
	if l, ok := p.fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return p.fsys.Stat(path)
}

func kindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&fs.ModeSymlink != 0:
		return KindSymlink
	default:
		return KindOther
	}
}

// identityOf returns dev:ino where the platform exposes it, otherwise
// the cleaned path.
func identityOf(info os.FileInfo, path string) string {
	if dev, ino, ok := statIdentity(info); ok {
		return fmt.Sprintf("%d:%d", dev, ino)
	}
	return filepath.Clean(path)
}

// resolvedPath approximates the path a symlink resolves to, for the
// identity fallback on platforms without inode numbers.
func resolvedPath(linkPath, target string) string {
	if target == "" {
		return linkPath
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(linkPath), target))
}
