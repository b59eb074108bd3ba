// Package config loads mark's settings.
//
// Values are layered from lowest to highest priority:
//
//	defaults
//	mark.yaml (or the file named by --config)
//	MARK_* environment variables
//	command-line flags
//
// A config file uses the same keys as the flags, in snake_case:
//
//	base_url: http://localhost:5000
//	poll_interval: 2s
//	max_polls: 0        # 0 polls until the job finishes
//	auto_dismiss: 3s
//	log_level: info
//	log_file: .mark/mark.log
//	output: text        # or json
//	theme: mark         # or light
//	metrics_addr: ":9090"
//	state_file: .mark/state.json # remembers the last folders; unset disables
//	request_timeout: 0s # 0 disables the per-request timeout
//
// Example usage:
//
//	cfg, err := config.Load(cfgFile, cmd.Flags())
//	if err != nil {
//		return err
//	}
//	client := api.NewClient(cfg.BaseURL)
package config
