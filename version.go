package cairn

// Version is the current release of the Cairn library.
const Version = "0.1.0"
