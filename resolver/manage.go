package resolver

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/arflix-cli/arflix/constant"
	"github.com/arflix-cli/arflix/filesystem"
	"github.com/arflix-cli/arflix/log"
	"github.com/arflix-cli/arflix/network"
	"github.com/arflix-cli/arflix/util"
	"github.com/arflix-cli/arflix/where"
	"github.com/samber/lo"
)

var scaffold = lo.Must(template.New("resolver").Funcs(template.FuncMap{
	"repeat": strings.Repeat,
	"plus":   func(a, b int) int { return a + b },
	"max":    util.Max[int],
}).Parse(constant.ResolverTemplate))

// Generate writes a new resolver script skeleton into where.Resolvers() and returns its path.
func Generate(name, siteURL, author string) (string, error) {
	filename := util.SanitizeFilename(name)
	if filename == "" {
		return "", fmt.Errorf("invalid resolver name %q", name)
	}

	target := filepath.Join(where.Resolvers(), filename+Extension)
	if exists, _ := filesystem.API().Exists(target); exists {
		return "", fmt.Errorf("resolver %s already exists", target)
	}

	var buf bytes.Buffer
	err := scaffold.Execute(&buf, struct {
		Name, URL, Author, StreamsFn string
	}{
		Name:      name,
		URL:       siteURL,
		Author:    author,
		StreamsFn: constant.StreamsFn,
	})
	if err != nil {
		return "", err
	}

	if err := filesystem.API().WriteFile(target, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return target, nil
}

// Install downloads the script at rawURL into where.Resolvers(). The file is replaced atomically and only
// when its content changed; the returned bool reports whether anything was written.
func Install(ctx context.Context, rawURL string) (string, bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false, fmt.Errorf("invalid resolver url %q", rawURL)
	}

	filename := path.Base(u.Path)
	if filepath.Ext(filename) != Extension {
		return "", false, fmt.Errorf("resolver url must point to a %s file", Extension)
	}

	body, err := network.Get(ctx, network.Client, rawURL, nil)
	if err != nil {
		return "", false, err
	}

	target := filepath.Join(where.Resolvers(), util.SanitizeFilename(util.FileStem(filename))+Extension)
	if local, err := filesystem.API().ReadFile(target); err == nil && sha256.Sum256(local) == sha256.Sum256(body) {
		log.Infof("resolver %s is up to date", target)
		return target, false, nil
	}

	tmp := target + ".tmp"
	if err := filesystem.API().WriteFile(tmp, body, 0644); err != nil {
		return "", false, err
	}

	if err := filesystem.API().Rename(tmp, target); err != nil {
		_ = filesystem.API().Remove(tmp)
		return "", false, err
	}

	protos.Delete(target)
	log.Infof("installed resolver %s from %s", target, rawURL)
	return target, true, nil
}

// Remove deletes the installed script called name.
func Remove(name string) error {
	target := filepath.Join(where.Resolvers(), name+Extension)
	if err := filesystem.API().Remove(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("resolver %s is not installed", name)
		}
		return err
	}

	protos.Delete(target)
	return nil
}
