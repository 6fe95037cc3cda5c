package main

import (
	"enasubmit/internal/config"
	"enasubmit/internal/services/webin"
	"enasubmit/internal/upload"
)

// ftpDialer is replaced in tests to avoid real FTP connections.
var ftpDialer upload.Dialer = upload.FTPDialer{}

func newTransport(cfg *config.Config) *webin.Client {
	return webin.NewClient(webin.Config{
		URL:            cfg.SubmitURL(),
		Username:       cfg.Webin.Username,
		Password:       cfg.Webin.Password,
		TimeoutSeconds: cfg.Webin.HTTPTimeoutSeconds,
	})
}

func newUploader(cfg *config.Config) *upload.Uploader {
	return upload.NewUploader(upload.Config{
		Host:     cfg.Webin.FTPHost,
		Username: cfg.Webin.Username,
		Password: cfg.Webin.Password,
		Timeout:  cfg.FTPTimeout(),
	}, ftpDialer)
}
