// Package asset provides the narrow source-side collaborators the job engine
// depends on: resolving a source reference to an exportable asset, view-level
// permission checks, and the lazy submission stream of a deployment. The full
// permission and ownership model lives outside the engine; callers are
// expected to have authorized the request before a task is accepted.
package asset

import (
	"context"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/skubi6/kpi/errors"
	"github.com/skubi6/kpi/formpack"
)

// PermissionChecker answers view-level access questions for one asset.
type PermissionChecker interface {
	CanViewSubmissions(username string) bool
}

// Deployment exposes a deployed asset's collected submissions.
type Deployment interface {
	// Submissions returns a lazy, one-pass stream of the deployment's
	// submissions in collection order.
	Submissions(ctx context.Context) formpack.Stream
}

// Asset is one exportable form-data source.
type Asset struct {
	UID   string
	Name  string
	Owner string

	// Versions holds the deployed schema versions, oldest first.
	Versions []*formpack.Version

	Deployment  Deployment
	Permissions PermissionChecker
}

// HasDeployment reports whether the asset has an active deployment.
func (a *Asset) HasDeployment() bool {
	return a.Deployment != nil
}

// CanViewSubmissions reports whether the user may read this asset's
// submissions. Without an attached checker, only the owner may.
func (a *Asset) CanViewSubmissions(username string) bool {
	if a.Permissions != nil {
		return a.Permissions.CanViewSubmissions(username)
	}
	return username == a.Owner
}

// Resolver turns a pre-authorized source reference into an asset.
type Resolver interface {
	Resolve(source string) (*Asset, error)
}

// Creator creates assets on behalf of an import job.
type Creator interface {
	Create(owner, name string, versions ...*formpack.Version) (*Asset, error)
}

// Registry is an in-memory asset catalog implementing Resolver and Creator.
// Production deployments supply their own resolver backed by the platform's
// asset store.
type Registry struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{assets: make(map[string]*Asset)}
}

// Add registers an existing asset.
func (r *Registry) Add(a *Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assets[a.UID] = a
}

// Create makes a new asset owned by owner and registers it.
func (r *Registry) Create(owner, name string, versions ...*formpack.Version) (*Asset, error) {
	a := &Asset{
		UID:      "a" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Name:     name,
		Owner:    owner,
		Versions: versions,
	}
	r.Add(a)
	return a, nil
}

// Resolve looks up an asset by source reference: either a bare uid or an
// asset-detail URL/path of the form ".../assets/<uid>/".
func (r *Registry) Resolve(source string) (*Asset, error) {
	uid, err := UIDFromSource(source)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[uid]
	if !ok {
		return nil, errors.Newf("asset not found: %s", uid)
	}
	return a, nil
}

// UIDFromSource extracts the asset uid from a source reference. Full URLs
// are reduced to their path before matching.
func UIDFromSource(source string) (string, error) {
	path := source
	if strings.HasPrefix(source, "http") {
		u, err := url.Parse(source)
		if err != nil {
			return "", errors.Wrapf(err, "invalid source %q", source)
		}
		path = u.Path
	}

	if i := strings.Index(path, "/assets/"); i >= 0 {
		rest := path[i+len("/assets/"):]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[:j]
		}
		if rest == "" {
			return "", errors.Newf("no asset uid in source %q", source)
		}
		return rest, nil
	}

	if path == "" || strings.ContainsAny(path, "/?#") {
		return "", errors.Newf("unresolvable source %q", source)
	}
	return path, nil
}

// SliceDeployment is a Deployment backed by an in-memory submission slice.
type SliceDeployment struct {
	Records []formpack.Submission
}

// Submissions implements Deployment.
func (d *SliceDeployment) Submissions(ctx context.Context) formpack.Stream {
	return &sliceStream{records: d.Records}
}

type sliceStream struct {
	records []formpack.Submission
	next    int
}

func (s *sliceStream) Next() (formpack.Submission, error) {
	if s.next >= len(s.records) {
		return nil, io.EOF
	}
	sub := s.records[s.next]
	s.next++
	return sub, nil
}
