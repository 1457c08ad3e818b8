/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Each extension keeps a single configuration object under the "_c:<package>"
key. The object is loaded from the genesis file by InitConfig and can later
be patched by the configuration owner with an update message processed by
UpdateConfigurationHandler.
*/
package gconf
