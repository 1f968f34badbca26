// Package ihex adapts Intel HEX images for the secure counter tooling.
//
// # Overview
//
// An Intel HEX file is a text container of addressed data records. This
// package exposes the small part of it the provisioning tools need:
//
//   - Load or parse a HEX file into an addressable Image
//   - Query the lowest and highest used address of an Image
//   - Build an Image from raw bytes placed at an offset
//   - Merge two Images, failing on any overlapping address
//   - Write an Image back out as Intel HEX text
//
// The Image and Codec interfaces keep callers independent of the HEX
// parser; GoHex is the implementation backed by
// github.com/marcinbor85/gohex.
//
// # Usage
//
//	codec := ihex.GoHex{}
//
//	provision, err := codec.Load("provision.hex")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	record, _ := codec.FromBytes(data, provision.MaxAddress()+1)
//	if err := record.Merge(provision); err != nil {
//	    log.Fatal(err) // *ihex.OverlapError if the ranges collide
//	}
//	_, err = record.WriteTo(os.Stdout)
//
// # Addresses
//
// Addresses are 64-bit throughout so that size arithmetic cannot overflow,
// but Intel HEX only addresses 32 bits: placing data beyond 0xFFFFFFFF
// fails with ErrAddressRange.
package ihex
