// Package spark provides an iFlytek Spark client implementation.
//
// Spark accepts either a plain bearer token or a three-part credential
// (app id, API key, API secret); with the triple the adapter signs
// each request with HMAC-SHA256. The request envelope nests the
// conversation under payload.message.text and the knobs under
// parameter.chat.
package spark
