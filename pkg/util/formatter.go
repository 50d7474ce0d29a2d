package util

import (
	"fmt"
	"math"
	"strings"

	"github.com/edp1096/toy-semi/pkg/expr"
)

func FormatValueFactor(value float64, unit string) string {
	absValue := math.Abs(value)
	switch {
	case math.IsNaN(value) || math.IsInf(value, 0):
		return strings.TrimSpace(fmt.Sprintf("%v %s", value, unit))
	case absValue == 0:
		return strings.TrimSpace(fmt.Sprintf("0 %s", unit))
	case absValue >= 1e15:
		return fmt.Sprintf("%.3e %s", value, unit)
	case absValue >= 1e6:
		return fmt.Sprintf("%.3f meg%s", value/1e6, unit)
	case absValue >= 1e3:
		return fmt.Sprintf("%.3f k%s", value/1e3, unit)
	case absValue >= 1:
		return fmt.Sprintf("%.3f %s", value, unit)
	case absValue >= 1e-3:
		return fmt.Sprintf("%.3f m%s", value*1e3, unit)
	case absValue >= 1e-6:
		return fmt.Sprintf("%.3f u%s", value*1e6, unit)
	case absValue >= 1e-9:
		return fmt.Sprintf("%.3f n%s", value*1e9, unit)
	case absValue >= 1e-12:
		return fmt.Sprintf("%.3f p%s", value*1e12, unit)
	default:
		return fmt.Sprintf("%.3e %s", value, unit)
	}
}

// FormatExpr prints concrete values with an SI factor and anything else
// as its expression.
func FormatExpr(e expr.Expr, unit string) string {
	if v, ok := expr.Value(e); ok {
		return FormatValueFactor(v, unit)
	}
	return e.String()
}

func FormatFrequency(freq float64) string {
	switch {
	case freq >= 1e9:
		return fmt.Sprintf("%7.3f GHz", freq/1e9)
	case freq >= 1e6:
		return fmt.Sprintf("%7.3f MHz", freq/1e6)
	case freq >= 1e3:
		return fmt.Sprintf("%7.3f kHz", freq/1e3)
	default:
		return fmt.Sprintf("%7.3f Hz ", freq)
	}
}

func FormatMagnitude(value float64) string {
	if math.Abs(value) >= 1000 || (math.Abs(value) < 0.001 && value != 0) {
		return fmt.Sprintf("%8.2e", value) // "1.00e+03" or "5.43e-05"
	}
	return fmt.Sprintf("%8.3g", value) // "  732.5 "
}

// units maps quantity names to their units, cm-based.
var units = map[string]string{
	"I_D": "A", "g_m": "S", "g_ds": "S", "g_d": "S", "r_ds_sat": "Ohm",
	"R": "Ohm", "rho": "Ohm*cm", "sigma": "S/cm",
	"mu_n": "cm2/Vs", "mu_p": "cm2/Vs", "mu_n_ch": "cm2/Vs", "D_n": "cm2/s", "D_p": "cm2/s",
	"n": "cm-3", "p": "cm-3", "Na": "cm-3", "Nd": "cm-3", "N_ab": "cm-3", "N_sd": "cm-3",
	"K_n": "A/V2", "K_N": "A/V2", "lambda": "1/V", "gamma": "V^0.5",
	"C_ox": "F/cm2", "C_ox_tot": "F", "C_gs": "F", "C_gd": "F", "C_gs_ov": "F", "C_gd_ov": "F",
	"Q_G": "C", "Q_G_lin": "C", "f_t": "Hz", "area": "cm2",
	"R_L": "Ohm", "R_1": "Ohm", "R_2": "Ohm", "R_D": "Ohm", "R_S": "Ohm", "R_sig": "Ohm", "R_in": "Ohm", "R_out": "Ohm",
}

// Unit guesses a unit from a quantity name.
func Unit(name string) string {
	if u, ok := units[name]; ok {
		return u
	}
	switch {
	case strings.HasPrefix(name, "V_"), strings.HasPrefix(name, "v_"), strings.HasPrefix(name, "phi_"):
		return "V"
	case strings.HasPrefix(name, "tau_"):
		return "s"
	case strings.HasPrefix(name, "L_"), strings.HasPrefix(name, "W"), strings.HasPrefix(name, "w_"), strings.HasPrefix(name, "X_"):
		return "cm"
	case strings.HasPrefix(name, "J_"):
		return "A/cm2"
	case strings.HasPrefix(name, "E_"), name == "e_field":
		return "V/cm"
	case strings.HasPrefix(name, "Q_"):
		return "C/cm2"
	case strings.HasPrefix(name, "C_"):
		return "F/cm2"
	}
	return ""
}
