// Package config provides configuration loading, merging, and placeholder
// resolution facilities for service processes.
//
// A [Store] owns the merged configuration tree of one configuration
// directory. All recognized files in the directory are parsed into generic
// trees, merged in a deterministic order (later files override earlier
// ones), and every string value is scanned for ${NAME} and ${NAME:DEFAULT}
// placeholders, which resolve against the process environment first and the
// configuration tree itself second.
//
// The main entry points are [New] to construct a store and [Store.Reload]
// to read the directory. Values are accessed with dot notation, e.g.
// store.Get("database.host", nil).
package config
