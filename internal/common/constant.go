package common

// VehiclesTable is the remote store table that holds vehicle records. The
// sync layer treats table names as opaque strings so additional tables
// (warehouse stock, dispatch plans) can reuse the same queue.
const VehiclesTable = "vehicles"
