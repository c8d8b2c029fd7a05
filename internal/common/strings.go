package common

// UnknownStr is the String() value for unrecognized enum members.
const UnknownStr = "unknown"
