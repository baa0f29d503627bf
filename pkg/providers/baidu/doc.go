// Package baidu provides a Baidu ERNIE (Wenxin Workshop) client
// implementation.
//
// Baidu authenticates with an OAuth2 client-credentials token minted
// from an API key and secret key. The adapter caches the token until
// shortly before it expires and transparently refreshes it once when
// the API reports the token invalid.
package baidu
