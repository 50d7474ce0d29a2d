package consts

// Silicon at 300 K. Lengths are in cm, masses in g, energies in eV unless noted.
const (
	CHARGE = 1.602177e-19 // Elementary charge (C)

	KT_Q  = 0.025852      // Thermal voltage kT/q (V)
	KT    = KT_Q * CHARGE // Thermal energy (J)
	NI    = 1.07e10       // Intrinsic carrier concentration (cm^-3)
	EPS0  = 8.854187e-14  // Vacuum permittivity (F/cm)
	EPSSI = 11.7 * EPS0   // Silicon permittivity (F/cm)
	EPSOX = 3.9 * EPS0    // Silicon dioxide permittivity (F/cm)
	NC    = 2.86e19       // Conduction-band effective density of states (cm^-3)
	NV    = 3.1e19        // Valence-band effective density of states (cm^-3)
	EGSI  = 1.1242        // Band gap at 300 K (eV)

	PLANCK = 4.135669e-15 // Planck constant (eV*s)
	M0     = 9.109389e-28 // Electron rest mass (g)
	MNDOS  = 1.09 * M0    // Electron density-of-states effective mass (g)
	MPDOS  = 1.15 * M0    // Hole density-of-states effective mass (g)
)
