// Package cloudapi drives remote conversion jobs through the cloud
// service's upload, wait, and download lifecycle.
//
// The client keeps jobs moving through a forward-only local state machine
// (Created, Uploading, Uploaded, Converting, Ready, Downloaded, with Failed
// reachable from any live state). Because the service exposes no dependable
// status endpoint, readiness detection is delegated to a replaceable
// WaitStrategy; the default waits a fixed delay and treats the subsequent
// download result as authoritative.
package cloudapi
