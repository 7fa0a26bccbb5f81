// Package provider implements the client for the upstream asynchronous
// image-generation API. It submits generation requests, classifies the
// immediate response, and resolves asynchronous tasks by polling the
// provider's status surface across several candidate endpoint shapes,
// pinning the first one that answers with a well-formed payload.
package provider
