/*
Package gconf stores per package configuration singletons. A
configuration is validated and written once under a "_c:<package>" key
and read back with Load. It is meant for records that are immutable
after construction.
*/
package gconf
