// Package redisstore implements the tracker's store capability interface on
// Redis using go-redis.
//
// Sorted-set indices map to ZADD/ZRANGE/ZRANGEBYLEX/ZLEXCOUNT, transition
// sets to SADD/SMEMBERS/DEL, the server clock to TIME, plain transactions to
// MULTI/EXEC pipelines and optimistic transactions to WATCH. Connection
// pooling comes from the underlying go-redis client.
package redisstore
