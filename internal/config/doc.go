// Package config holds the settings shared by the keymacro commands: the
// menu quit and first keys, the prompt backend, logging and the Lua
// script timeout.
//
// Load starts from Default, overlays the file named by --config (TOML or
// YAML, chosen by extension) and then any KEYMACRO_* environment variable,
// so KEYMACRO_MENU_QUIT_KEY=q beats quitKey in the file. Command flags
// such as --log-level are applied by the caller afterwards, and Validate
// reports every bad value at once.
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// The loader sub-package reads and merges the raw layers.
package config
