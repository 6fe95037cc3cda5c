package config

const (
	defaultSandboxURL         = "https://wwwdev.ebi.ac.uk/ena/submit/drop-box/submit/"
	defaultProductionURL      = "https://www.ebi.ac.uk/ena/submit/drop-box/submit/"
	defaultFTPHost            = "webin.ebi.ac.uk:21"
	defaultFTPTimeoutSeconds  = 30
	defaultHTTPTimeoutSeconds = 300
	defaultTaxonID            = "2697049"
	defaultFileType           = "bam"
	defaultStateDir           = "~/.local/share/enasubmit"
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults. The production
// switch is off so an unconfigured run can only reach the sandbox.
func Default() Config {
	return Config{
		Webin: Webin{
			SandboxURL:         defaultSandboxURL,
			ProductionURL:      defaultProductionURL,
			FTPHost:            defaultFTPHost,
			FTPTimeoutSeconds:  defaultFTPTimeoutSeconds,
			HTTPTimeoutSeconds: defaultHTTPTimeoutSeconds,
		},
		Defaults: Defaults{
			TaxonID:  defaultTaxonID,
			FileType: defaultFileType,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Journal: Journal{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
