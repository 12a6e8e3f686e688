// Package supervisor runs ffmpeg in the foreground or fully detached, and
// probes or stops detached recordings by process identifier.
//
// Foreground runs forward interrupt signals by killing the child through a
// mutex guarded handle. Detached runs start a new session on unix and use
// DETACHED_PROCESS with a new process group on windows. Liveness checks use a
// zero signal on unix and an exact PID column match against tasklist CSV
// output on windows.
package supervisor
