package hart

// csr_defs.go names the CSR addresses and MSTATUS-family bit layouts used
// by the trap controller and execution core. Addresses are grounded on the
// RISC-V privileged spec's assigned numbers (cross-checked against
// tinyrange-cc's rv64 CPU constants in the retrieval pack, which names the
// same addresses for the subset it implements).
const (
	CSRFflags  uint16 = 0x001
	CSRFrm     uint16 = 0x002
	CSRFcsr    uint16 = 0x003
	CSRVstart  uint16 = 0x008
	CSRVxsat   uint16 = 0x009
	CSRVxrm    uint16 = 0x00a
	CSRVcsr    uint16 = 0x00f
	CSRVl      uint16 = 0xc20
	CSRVtype   uint16 = 0xc21
	CSRVlenb   uint16 = 0xc22

	CSRSstatus    uint16 = 0x100
	CSRSedeleg    uint16 = 0x102
	CSRSideleg    uint16 = 0x103
	CSRSie        uint16 = 0x104
	CSRStvec      uint16 = 0x105
	CSRScounteren uint16 = 0x106
	CSRSenvcfg    uint16 = 0x10a
	CSRSscratch   uint16 = 0x140
	CSRSepc       uint16 = 0x141
	CSRScause     uint16 = 0x142
	CSRStval      uint16 = 0x143
	CSRSip        uint16 = 0x144
	CSRSatp       uint16 = 0x180

	CSRVsstatus uint16 = 0x200
	CSRVsie     uint16 = 0x204
	CSRVstvec   uint16 = 0x205
	CSRVsscratch uint16 = 0x240
	CSRVsepc    uint16 = 0x241
	CSRVscause  uint16 = 0x242
	CSRVstval   uint16 = 0x243
	CSRVsip     uint16 = 0x244
	CSRVsatp    uint16 = 0x280

	CSRHstatus    uint16 = 0x600
	CSRHedeleg    uint16 = 0x602
	CSRHideleg    uint16 = 0x603
	CSRHie        uint16 = 0x604
	CSRHcounteren uint16 = 0x606
	CSRHgeie      uint16 = 0x607
	CSRHtval      uint16 = 0x643
	CSRHip        uint16 = 0x644
	CSRHvip       uint16 = 0x645
	CSRHtinst     uint16 = 0x64a
	CSRHgatp      uint16 = 0x680
	CSRHenvcfg    uint16 = 0x60a
	CSRHvictl     uint16 = 0x609
	CSRHgeip      uint16 = 0xe12

	CSRMstatus    uint16 = 0x300
	CSRMisa       uint16 = 0x301
	CSRMedeleg    uint16 = 0x302
	CSRMideleg    uint16 = 0x303
	CSRMie        uint16 = 0x304
	CSRMtvec      uint16 = 0x305
	CSRMcounteren uint16 = 0x306
	CSRMenvcfg    uint16 = 0x30a
	CSRMstatush   uint16 = 0x310
	CSRMenvcfgh   uint16 = 0x31a
	CSRMscratch   uint16 = 0x340
	CSRMepc       uint16 = 0x341
	CSRMcause     uint16 = 0x342
	CSRMtval      uint16 = 0x343
	CSRMip        uint16 = 0x344
	CSRMtval2     uint16 = 0x34a
	CSRMtinst     uint16 = 0x34b

	CSRMnscratch uint16 = 0x740
	CSRMnepc     uint16 = 0x741
	CSRMncause   uint16 = 0x742
	CSRMnstatus  uint16 = 0x744

	CSRPmpcfg0  uint16 = 0x3a0 // pmpcfg0..15 follow sequentially
	CSRPmpaddr0 uint16 = 0x3b0 // pmpaddr0..63 follow sequentially

	CSRTselect uint16 = 0x7a0
	CSRTdata1  uint16 = 0x7a1
	CSRTdata2  uint16 = 0x7a2
	CSRTdata3  uint16 = 0x7a3
	CSRTinfo   uint16 = 0x7a4
	CSRTcontrol uint16 = 0x7a5
	CSRDcsr    uint16 = 0x7b0
	CSRDpc     uint16 = 0x7b1
	CSRDscratch0 uint16 = 0x7b2
	CSRDscratch1 uint16 = 0x7b3

	CSRCycle   uint16 = 0xc00
	CSRTime    uint16 = 0xc01
	CSRInstret uint16 = 0xc02

	CSRMvendorid uint16 = 0xf11
	CSRMarchid   uint16 = 0xf12
	CSRMimpid    uint16 = 0xf13
	CSRMhartid   uint16 = 0xf14
	CSRMconfigptr uint16 = 0xf15
)

// MSTATUS-family bit positions, shared across MSTATUS/SSTATUS/VSSTATUS by
// an offset-free layout (SSTATUS/VSSTATUS are a masked view of MSTATUS'
// bits, per spec).
const (
	MstatusSIE  uint64 = 1 << 1
	MstatusMIE  uint64 = 1 << 3
	MstatusSPIE uint64 = 1 << 5
	MstatusUBE  uint64 = 1 << 6
	MstatusMPIE uint64 = 1 << 7
	MstatusSPP  uint64 = 1 << 8
	MstatusVS   uint64 = 3 << 9
	MstatusMPP  uint64 = 3 << 11
	MstatusFS   uint64 = 3 << 13
	MstatusMPV  uint64 = 1 << 39
	MstatusGVA  uint64 = 1 << 38
	MstatusMPRV uint64 = 1 << 17
	MstatusSUM  uint64 = 1 << 18
	MstatusMXR  uint64 = 1 << 19
	MstatusTVM  uint64 = 1 << 20
	MstatusTW   uint64 = 1 << 21
	MstatusTSR  uint64 = 1 << 22
	MstatusSBE  uint64 = 1 << 36
	MstatusMBE  uint64 = 1 << 37
	MstatusSD   uint64 = 1 << 63

	MstatusMPPShift = 11
	MstatusSPPShift = 8
	MstatusFSShift  = 13
	MstatusVSShift  = 9

	// FSOff etc. are the two-bit FS/VS state encodings: 0 Off, 1 Initial, 2
	// Clean, 3 Dirty.
	FSOff   = 0
	FSDirty = 3

	HstatusVSBE  uint64 = 1 << 5
	HstatusGVA   uint64 = 1 << 6
	HstatusSPV   uint64 = 1 << 7
	HstatusSPVP  uint64 = 1 << 8
	HstatusHU    uint64 = 1 << 9
	HstatusVTVM  uint64 = 1 << 20
	HstatusVTW   uint64 = 1 << 21
	HstatusVTSR  uint64 = 1 << 22
	HstatusVGEIN uint64 = 0x3f << 12
)

// mip/mie bit positions.
const (
	MipSSIP uint64 = 1 << 1
	MipMSIP uint64 = 1 << 3
	MipSTIP uint64 = 1 << 5
	MipMTIP uint64 = 1 << 7
	MipSEIP uint64 = 1 << 9
	MipMEIP uint64 = 1 << 11
)
