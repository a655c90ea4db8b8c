package loader

import (
	"context"

	"go.trai.ch/knot/internal/core/domain"
)

// reuse returns the stored artifact for unit when it is still fresh. The unit's
// references are resolved first because freshness is judged against their
// current fingerprints, so a reference cycle fails here exactly as it would
// during compilation.
func (r *Registry) reuse(ctx context.Context, unit *domain.Unit) (*domain.Artifact, bool, error) {
	stored := r.load(unit)
	if stored == nil {
		return nil, false, nil
	}

	fresh := true
	refs := 0
	for _, ref := range unit.References {
		if ref == unit.Name {
			continue
		}
		refs++
		dep, err := r.resolve(ctx, ref)
		if err != nil {
			return nil, false, err
		}
		if stored.Handle.DependencyFingerprints[ref.String()] != dep.Fingerprint {
			fresh = false
		}
	}
	if !fresh || refs != len(stored.Handle.DependencyFingerprints) {
		return nil, false, nil
	}
	return stored, true, nil
}

// reuseBatch returns the stored artifacts of a batch when every member is fresh,
// and nil otherwise. References outside the batch are already cached.
func (r *Registry) reuseBatch(units []*domain.Unit) map[domain.UnitName]*domain.Artifact {
	if !r.storeEnabled() {
		return nil
	}

	arts := make(map[domain.UnitName]*domain.Artifact, len(units))
	for _, u := range units {
		art := r.load(u)
		if art == nil {
			return nil
		}
		arts[u.Name] = art
	}

	for _, u := range units {
		deps := arts[u.Name].Handle.DependencyFingerprints
		refs := 0
		for _, ref := range u.References {
			if ref == u.Name {
				continue
			}
			refs++
			dep, ok := arts[ref]
			if !ok {
				dep, ok = r.cache[ref]
			}
			if !ok || deps[ref.String()] != dep.Fingerprint {
				return nil
			}
		}
		if refs != len(deps) {
			return nil
		}
	}
	return arts
}

// load reads the stored artifact for unit, returning nil when there is none or
// when the unit source changed since it was stored.
func (r *Registry) load(unit *domain.Unit) *domain.Artifact {
	if !r.storeEnabled() {
		return nil
	}
	art, err := r.artifacts.Get(r.target, unit.Name)
	if err != nil {
		r.warn("ignoring stored artifact for " + unit.Name.String() + ": " + err.Error())
		return nil
	}
	if art == nil || art.Fingerprint != r.hasher.Fingerprint(unit) {
		return nil
	}
	return art
}

func (r *Registry) store(art *domain.Artifact) {
	if !r.storeEnabled() {
		return
	}
	if err := r.artifacts.Put(r.target, art); err != nil {
		r.warn("could not store artifact for " + art.UnitName.String() + ": " + err.Error())
	}
}

func (r *Registry) storeEnabled() bool {
	return r.artifacts != nil && r.hasher != nil && r.target != ""
}

func (r *Registry) warn(msg string) {
	if r.logger != nil {
		r.logger.Warn(msg)
	}
}
