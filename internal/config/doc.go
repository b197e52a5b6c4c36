// Package config decodes the HCL process configuration of the isbnmap server.
//
// A configuration file has up to four blocks, all optional:
//
//	source {
//	  kind = "s3"
//	  bucket = "isbn-codes"
//	  name = "aa_isbn13_codes.benc.zst"
//	}
//
//	snapshot {
//	  path        = "/var/cache/isbnmap"
//	  compression = "zstd"
//	}
//
//	server {
//	  listen = ":8000"
//	}
//
//	log {
//	  level = "debug"
//	}
//
// Attributes left out keep the values of Default.
package config
