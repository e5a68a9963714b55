// Package s3 provides an S3 implementation of the remote.Store interface.
//
// Entries are laid out as "<prefix>/agents/<agentID>/<key>", so DeleteAgent
// is a paginated list-and-delete over one agent's prefix.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", s3.WithPrefix("semcache/"))
//
//	sc, err := semcache.New[Doc](provider, backend,
//	    semcache.WithRemoteStore(store),
//	)
package s3
