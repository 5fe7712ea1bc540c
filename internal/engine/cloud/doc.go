// Package cloud adapts the remote conversion service to the engine
// contract: upload the source, wait for the remote job, download the
// result into place.
package cloud
