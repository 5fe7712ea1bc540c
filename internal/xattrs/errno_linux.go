package xattrs

import "golang.org/x/sys/unix"

// errAttrAbsent is the errno Getxattr reports for a missing attribute.
const errAttrAbsent = unix.ENODATA
