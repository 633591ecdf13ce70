package icon

// NativeFormat is what systray.SetIcon accepts on Windows.
const NativeFormat = FormatICO
