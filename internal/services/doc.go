// Package services implements the registry core: IdentityService owns the
// accounts and the current session, VehicleService owns the vehicle records
// and their approval workflow.
//
// Both persist whole collections as JSON documents under fixed keys of a kv
// repository (users, currentUser, alreadyLaunched, vehicles). Every mutation
// is a read-modify-write of one collection, serialized by the service mutex
// and written before the call returns. A failed write leaves the previously
// stored document intact. The services assume a single writer process; two
// processes sharing one database can lose updates.
package services
