// Package versionsync keeps assets/js/version.js and package.json on the same version.
package versionsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/beelot/tooling/pkg/version"
	"github.com/beelot/tooling/pkg/versionfile"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Source selects which file is the source of truth.
type Source string

const (
	SourceVersionJS   Source = "version-js"
	SourcePackageJSON Source = "package-json"
	SourceMax         Source = "max"
)

// Sources lists the accepted values for Source.
var Sources = []Source{SourceVersionJS, SourcePackageJSON, SourceMax}

// ErrMismatch is returned by a check when the files disagree with the policy.
var ErrMismatch = errors.New("version mismatch detected")

// ParseSource validates s.
func ParseSource(s string) (Source, error) {
	for _, src := range Sources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", fmt.Errorf("invalid source %q (expected one of %v)", s, Sources)
}

// Options controls one synchronization run.
type Options struct {
	Source Source
	Check  bool
	DryRun bool
}

// Result describes what a run observed and did.
type Result struct {
	Source      Source
	VersionJS   string
	PackageJSON string
	Target      string
	// Changed lists the files written, or that would be written in a dry run.
	Changed []string
}

// Syncer operates on one pair of version files.
type Syncer struct {
	versionJSPath   string
	packageJSONPath string
	logger          *otelzap.Logger
}

// New creates a Syncer for the given file paths.
func New(versionJSPath, packageJSONPath string, logger *otelzap.Logger) *Syncer {
	return &Syncer{
		versionJSPath:   versionJSPath,
		packageJSONPath: packageJSONPath,
		logger:          logger,
	}
}

// Run checks or synchronizes the two files according to opts.
func (s *Syncer) Run(ctx context.Context, opts Options) (Result, error) {
	logger := s.logger.Ctx(ctx)

	jsVersion, err := versionfile.ReadJS(s.versionJSPath)
	if err != nil {
		return Result{}, err
	}
	manifest, err := versionfile.LoadManifest(s.packageJSONPath)
	if err != nil {
		return Result{}, err
	}
	pkgVersion, err := manifest.Version()
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", s.packageJSONPath, err)
	}

	res := Result{Source: opts.Source, VersionJS: jsVersion, PackageJSON: pkgVersion}
	switch opts.Source {
	case SourceVersionJS:
		res.Target = jsVersion
	case SourcePackageJSON:
		res.Target = pkgVersion
	case SourceMax:
		res.Target, err = version.Max(jsVersion, pkgVersion)
		if err != nil {
			return res, err
		}
	default:
		return res, fmt.Errorf("invalid source %q", opts.Source)
	}

	logger.Info("Read version files",
		zap.String("source", string(opts.Source)),
		zap.String("version_js", jsVersion),
		zap.String("package_json", pkgVersion))

	inSync := jsVersion == res.Target && pkgVersion == res.Target

	if opts.Check {
		if inSync {
			logger.Info("Version files are synchronized")
			return res, nil
		}
		logger.Error("Version mismatch detected",
			zap.String("expected", res.Target),
			zap.String("version_js", jsVersion),
			zap.String("package_json", pkgVersion))
		return res, fmt.Errorf("%w: expected %s, version.js=%s, package.json=%s",
			ErrMismatch, res.Target, jsVersion, pkgVersion)
	}

	if inSync {
		logger.Warn("No changes required, versions are already synchronized")
		return res, nil
	}

	if pkgVersion != res.Target {
		manifest.SetVersion(res.Target)
		if err := s.write(ctx, s.packageJSONPath, res.Target, opts.DryRun, manifest.Save); err != nil {
			return res, err
		}
		res.Changed = append(res.Changed, s.packageJSONPath)
	}
	if jsVersion != res.Target {
		writeJS := func(path string) error { return versionfile.WriteJS(path, res.Target) }
		if err := s.write(ctx, s.versionJSPath, res.Target, opts.DryRun, writeJS); err != nil {
			return res, err
		}
		res.Changed = append(res.Changed, s.versionJSPath)
	}

	logger.Info("Synchronized version files",
		zap.String("version", res.Target),
		zap.Strings("files", res.Changed),
		zap.Bool("dryrun", opts.DryRun))
	return res, nil
}

func (s *Syncer) write(ctx context.Context, path, v string, dryRun bool, save func(string) error) error {
	if dryRun {
		s.logger.Ctx(ctx).Info("DRYRUN write", zap.String("file", path), zap.String("version", v))
		return nil
	}
	return save(path)
}
