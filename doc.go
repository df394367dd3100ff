// Package cs1000 drives a Konica Minolta CS-1000 spectroradiometer over a
// serial line.
//
// A Device owns one transport and runs the instrument's rigid
// command/response exchange: RMT to take remote control, MES to trigger a
// reading, BDR to select a data block and & to fetch each data line. The
// 2° and 10° colorimetric blocks and the 380 nm-onward spectral sweep are
// decoded into a Measurement, also available as a keyed Results map.
//
// A Device is not safe for concurrent use.
package cs1000
