package reconcile

import (
	"context"
	"fmt"

	"photorestore/internal/asset"
	"photorestore/internal/livepair"
)

// HashFolder scans dir and hashes every media file found, going through the
// hash cache when it is enabled. Perceptual hashes are computed for images
// when withPerceptual is set.
func (r *Runner) HashFolder(ctx context.Context, dir string, withPerceptual bool) ([]*asset.Asset, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, st := r.begin(ctx)
	if err := st.openCache(ctx); err != nil {
		return nil, err
	}
	defer st.closeCache()

	assets, err := st.scanner("scan", false).Scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	if err := st.hash(ctx, "hash", assets, withPerceptual); err != nil {
		return nil, err
	}
	return assets, nil
}

// Pairs scans dir and returns its Live Photo pairs using the configured
// pairing options. Video probing is skipped because pairing only needs names.
func (r *Runner) Pairs(ctx context.Context, dir string) ([]asset.LivePair, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, st := r.begin(ctx)
	st.noProbe = true
	assets, err := st.scanner("scan", r.cfg.LivePhotos.PreferHEIC).Scan(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return livepair.Group(assets, r.cfg.PairOptions()), nil
}
