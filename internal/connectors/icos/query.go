package icos

import "strings"

// ObjectSpecs are the cpmeta object specifications harvested from the
// Carbon Portal.
var ObjectSpecs = []string{
	"radonFluxSpatialL3",
	"co2EmissionInventory",
	"sunInducedFluorescence",
	"oceanPco2CarbonFluxMaps",
	"inversionModelingSpatial",
	"biosphereModelingSpatial",
	"ecoFluxesDataObject",
	"ecoEcoDataObject",
	"ecoMeteoDataObject",
	"ecoAirTempMultiLevelsDataObject",
	"ecoProfileMultiLevelsDataObject",
	"atcMeteoL0DataObject",
	"atcLosGatosL0DataObject",
	"atcPicarroL0DataObject",
	"ingosInversionResult",
	"socat_DataObject",
	"etcBioMeteoRawSeriesBin",
	"etcStorageFluxRawSeriesBin",
	"etcBioMeteoRawSeriesCsv",
	"etcStorageFluxRawSeriesCsv",
	"etcSaheatFlagFile",
	"ceptometerMeasurements",
	"globalCarbonBudget",
	"nationalCarbonEmissions",
	"globalMethaneBudget",
	"digHemispherPics",
	"etcEddyFluxRawSeriesCsv",
	"etcEddyFluxRawSeriesBin",
	"atcCh4L2DataObject",
	"atcCoL2DataObject",
	"atcCo2L2DataObject",
	"atcMtoL2DataObject",
	"atcC14L2DataObject",
	"atcMeteoGrowingNrtDataObject",
	"atcCo2NrtGrowingDataObject",
	"atcCh4NrtGrowingDataObject",
	"atcN2oL2DataObject",
	"atcCoNrtGrowingDataObject",
	"atcN2oNrtGrowingDataObject",
	"ingosCh4Release",
	"ingosN2oRelease",
	"atcRnNrtDataObject",
	"drought2018AtmoProduct",
	"modelDataArchive",
	"etcArchiveProduct",
	"dought2018ArchiveProduct",
	"atmoMeasResultsArchive",
	"etcNrtAuxData",
	"etcFluxnetProduct",
	"drought2018FluxnetProduct",
	"etcNrtFluxes",
	"etcNrtMeteosens",
	"etcNrtMeteo",
	"icosOtcL1Product",
	"icosOtcL1Product_v2",
	"icosOtcL2Product",
	"icosOtcFosL2Product",
	"otcL0DataObject",
	"inversionModelingTimeseries",
}

const specPrefix = "http://meta.icos-cp.eu/resources/cpmeta/"

// Query returns the SPARQL query listing the latest version of every data
// object with one of the given specifications.
func Query(specs []string) string {
	values := make([]string, len(specs))
	for i, s := range specs {
		values[i] = "<" + specPrefix + s + ">"
	}

	var b strings.Builder
	b.WriteString("prefix cpmeta: <http://meta.icos-cp.eu/ontologies/cpmeta/>\n")
	b.WriteString("prefix prov: <http://www.w3.org/ns/prov#>\n")
	b.WriteString("select ?dobj\n")
	b.WriteString("where {\n")
	b.WriteString("\tVALUES ?spec {" + strings.Join(values, " ") + "}\n")
	b.WriteString("\t?dobj cpmeta:hasObjectSpec ?spec .\n")
	b.WriteString("\tFILTER NOT EXISTS {[] cpmeta:isNextVersionOf ?dobj}\n")
	b.WriteString("}")
	return b.String()
}
