// Package upload transfers run files to the archive's FTP drop box and
// computes the MD5 digest that the run manifest declares for them.
package upload
