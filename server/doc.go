// Package server maps the isbnmap query surface onto HTTP for the
// visualization front-end.
//
// Routes (every route accepts ?dataset=, default md5):
//
//	GET /api/isbn/{isbn}            {"status":"available"|"unavailable"}
//	GET /api/samples/{n}            identifiers covered by the first n runs
//	GET /api/isbns?limit=           first limit present identifiers
//	GET /api/detail_view?base_isbn= presence of 100 identifiers
//	GET /api/cluster_view?base_isbn= 0/1 mask of 800000 identifiers
//	GET /api/global_view            1000x800 grid at scale 2500, 0..255
//	GET /api/get_tile?tile_x=&tile_y= 1000x1000 full-resolution tile
//	GET /api/stats                  per-dataset index statistics
package server
