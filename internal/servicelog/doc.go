// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package servicelog keeps every raw request and response exchanged with the
// acquirer, for audit. Entries are named after a pattern such as
// `%Y-%M-%D\%h%m%s.%f-%a.xml`, which puts each day in its own directory and
// names the file after the time and the root element of the message:
//
//	2024-03-05/092030.123-AcquirerTrxReq.xml
//
// Entries go to a directory (DirWriter) or to a MongoDB GridFS bucket
// (GridFSWriter). They are never read back.
package servicelog
