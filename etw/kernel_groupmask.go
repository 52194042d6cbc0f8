package etw

// Group-mask kernel event flags, carried verbatim from the published
// PERFINFO_GROUPMASK table (spec.md §4.5, C5's group-mask variant):
// https://geoffchappell.com/studies/windows/km/ntoskrnl/api/etw/tracesup/perfinfo_groupmask.htm
//
// Each constant packs a word index into its top three bits and a bit value
// into its low 29 bits; groupMaskWord/groupMaskBit recover the two parts.
// Applied write-once at session setup via HostRuntime.SetTraceInformation.
const (
	// Masks[0]
	PerfProcess      uint32 = 0x00000001
	PerfThread       uint32 = 0x00000002
	PerfProcThread   uint32 = 0x00000003
	PerfLoader       uint32 = 0x00000004
	PerfPerfCounter  uint32 = 0x00000008
	PerfFilename     uint32 = 0x00000200
	PerfDiskIO       uint32 = 0x00000300
	PerfDiskIOInit   uint32 = 0x00000400
	PerfAllFaults    uint32 = 0x00001000
	PerfHardFaults   uint32 = 0x00002000
	PerfVamap        uint32 = 0x00008000
	PerfNetwork      uint32 = 0x00010000
	PerfRegistry     uint32 = 0x00020000
	PerfDbgPrint     uint32 = 0x00040000
	PerfJob          uint32 = 0x00080000
	PerfALPC         uint32 = 0x00100000
	PerfSplitIO      uint32 = 0x00200000
	PerfDebugEvents  uint32 = 0x00400000
	PerfFileIO       uint32 = 0x02000000
	PerfFileIOInit   uint32 = 0x04000000
	PerfNoSysConfig  uint32 = 0x10000000

	// Masks[1]
	PerfMemory          uint32 = 0x20000001
	PerfProfile         uint32 = 0x20000002
	PerfContextSwitch   uint32 = 0x20000004
	PerfFootprint       uint32 = 0x20000008
	PerfDrivers         uint32 = 0x20000010
	PerfRefset          uint32 = 0x20000020
	PerfPool            uint32 = 0x20000040
	PerfPoolTrace       uint32 = 0x20000041
	PerfDPC             uint32 = 0x20000080
	PerfCompactCSwitch  uint32 = 0x20000100
	PerfDispatcher      uint32 = 0x20000200
	PerfPMCProfile      uint32 = 0x20000400
	PerfProfiling       uint32 = 0x20000402
	PerfProcessInswap   uint32 = 0x20000800
	PerfAffinity        uint32 = 0x20001000
	PerfPriority        uint32 = 0x20002000
	PerfInterrupt       uint32 = 0x20004000
	PerfVirtualAlloc    uint32 = 0x20008000
	PerfSpinlock        uint32 = 0x20010000
	PerfSyncObjects     uint32 = 0x20020000
	PerfDPCQueue        uint32 = 0x20040000
	PerfMeminfo         uint32 = 0x20080000
	PerfContmemGen      uint32 = 0x20100000
	PerfSpinlockCntrs   uint32 = 0x20200000
	PerfSpinInstr       uint32 = 0x20210000
	PerfSession         uint32 = 0x20400000
	PerfPFSection       uint32 = 0x20400000
	PerfMeminfoWS       uint32 = 0x20800000
	PerfKernelQueue     uint32 = 0x21000000
	PerfInterruptSteer  uint32 = 0x22000000
	PerfShouldYield     uint32 = 0x24000000
	PerfWS              uint32 = 0x28000000

	// Masks[2]
	PerfAntiStarvation uint32 = 0x40000001
	PerfProcessFreeze  uint32 = 0x40000002
	PerfPFNList        uint32 = 0x40000004
	PerfWSDetail       uint32 = 0x40000008
	PerfWSEntry        uint32 = 0x40000010
	PerfHeap           uint32 = 0x40000020
	PerfSyscall        uint32 = 0x40000040
	PerfUMS            uint32 = 0x40000080
	PerfBacktrace      uint32 = 0x40000100
	PerfVulcan         uint32 = 0x40000200
	PerfObjects        uint32 = 0x40000400
	PerfEvents         uint32 = 0x40000800
	PerfFullTrace      uint32 = 0x40001000
	PerfDFSS           uint32 = 0x40002000
	PerfPrefetch       uint32 = 0x40004000
	PerfProcessorIdle  uint32 = 0x40008000
	PerfCPUConfig      uint32 = 0x40010000
	PerfTimer          uint32 = 0x40020000
	PerfClockInterrupt uint32 = 0x40040000
	PerfLoadBalancer   uint32 = 0x40080000
	PerfClockTimer     uint32 = 0x40100000
	PerfIdleSelection  uint32 = 0x40200000
	PerfIPI            uint32 = 0x40400000
	PerfIOTimer        uint32 = 0x40800000
	PerfRegHive        uint32 = 0x41000000
	PerfRegNotif       uint32 = 0x42000000
	PerfPPMExitLatency uint32 = 0x44000000
	PerfWorkerThread   uint32 = 0x48000000

	// Masks[4]
	PerfOpticalIO      uint32 = 0x80000001
	PerfOpticalIOInit  uint32 = 0x80000002
	PerfDLLInfo        uint32 = 0x80000008
	PerfDLLFlushWS     uint32 = 0x80000010
	PerfOBHandle       uint32 = 0x80000040
	PerfOBObject       uint32 = 0x80000080
	PerfWakeDrop       uint32 = 0x80000200
	PerfWakeEvent      uint32 = 0x80000400
	PerfDebugger       uint32 = 0x80000800
	PerfProcAttach     uint32 = 0x80001000
	PerfWakeCounter    uint32 = 0x80002000
	PerfPower          uint32 = 0x80008000
	PerfSoftTrim       uint32 = 0x80010000
	PerfCC             uint32 = 0x80020000
	PerfFltIOInit      uint32 = 0x80080000
	PerfFltIO          uint32 = 0x80100000
	PerfFltFastIO      uint32 = 0x80200000
	PerfFltIOFailure   uint32 = 0x80400000
	PerfHVProfile      uint32 = 0x80800000
	PerfWDFDPC         uint32 = 0x81000000
	PerfWDFInterrupt   uint32 = 0x82000000
	PerfCacheFlush     uint32 = 0x84000000

	// Masks[5]
	PerfHiberRundown uint32 = 0xA0000001

	// Masks[6]
	PerfSysCfgSystem   uint32 = 0xC0000001
	PerfSysCfgGraphics uint32 = 0xC0000002
	PerfSysCfgStorage  uint32 = 0xC0000004
	PerfSysCfgNetwork  uint32 = 0xC0000008
	PerfSysCfgServices uint32 = 0xC0000010
	PerfSysCfgPnP      uint32 = 0xC0000020
	PerfSysCfgOptical  uint32 = 0xC0000040
	PerfSysCfgAll      uint32 = 0xDFFFFFFF

	// Masks[7]
	PerfClusterOff    uint32 = 0xE0000001
	PerfMemoryControl uint32 = 0xE0000002
)

// KernelGroupMaskProvider builds a group-mask-based kernel provider bound to
// guid (spec.md §4.5, "Group-mask-based": `KernelProvider(guid, mask)`).
// mask is union-collapsed with every other group-mask provider's mask and
// applied via HostRuntime.SetTraceInformation before providers are enabled.
func KernelGroupMaskProvider(guid GUID, mask GroupMask) *Provider {
	p := NewProvider(guid)
	m := mask
	p.kernelGroupMask = &m
	return p
}

// groupMaskWord recovers the target Masks[] index from a PERF_* constant:
// the word index is packed into the constant's top three bits.
func groupMaskWord(perfConst uint32) int {
	return int(perfConst >> 29)
}

// groupMaskBit recovers the bit(s) to OR into Masks[groupMaskWord(v)].
func groupMaskBit(perfConst uint32) uint32 {
	return perfConst &^ (uint32(7) << 29)
}

// Set ORs one or more PERF_* constants into their respective words of g.
func (g *GroupMask) Set(perfConsts ...uint32) *GroupMask {
	for _, c := range perfConsts {
		g[groupMaskWord(c)] |= groupMaskBit(c)
	}
	return g
}
