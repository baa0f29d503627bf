// Package aliyun provides an Alibaba Cloud DashScope (Qwen) client
// implementation.
//
// The DashScope text-generation API nests the conversation under an
// input object and the knobs under a parameters object, and reports
// errors through a code field inside an HTTP 200 body.
package aliyun
