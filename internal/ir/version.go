package ir

// EngineVersion is the reorder engine version, recorded on every move
// journal record.
const EngineVersion = "0.1.0"
