// Package acl implements the access-control entry grammar used by the file
// store: "[default:]user|group|mask|other:[name][:rwx]", comma separated for
// a full spec. The client only depends on it through adls.AclCodec.
package acl
