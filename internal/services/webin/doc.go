// Package webin posts submission documents to the archive's drop-box
// endpoint.
//
// A Client performs exactly one multipart POST per Submit call. It does not
// retry and does not interpret the receipt; callers hand the returned
// Response to the receipt classifier.
package webin
