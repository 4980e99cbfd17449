/*
Package cache provides an interface to memcache. Values are gob encoded and
may be larger than a single memcache item, in which case they are split into
chunks and stored behind a manifest key.

A missing chunk makes the whole value a miss. Nothing more than eventual
consistency is promised.
*/
package cache
