// Package blogcms provides the domain core of the blog content-management
// backend: blog post types, the post lifecycle service, image validation,
// and the store interfaces the service coordinates.
//
// The lifecycle service keeps the post record and its uploaded image asset
// consistent across two independent stores. Since no cross-store transaction
// exists, create and update sequence their writes (asset first, record
// second) and compensate on partial failure so a post never stably
// references a missing asset and no asset stays referenced by zero posts.
//
// Basic usage:
//
//	svc, err := blogcms.New(
//	    blogcms.WithPostRepository(repo),
//	    blogcms.WithAssetStore(store),
//	)
package blogcms
